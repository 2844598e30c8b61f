package web

import (
	"fmt"
	"net/http"
	"strings"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

// RequireAuth validates the Authorization bearer token and injects the claims
// into the request context. Returns 401 JSON when absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims, err := auth.Verify(h.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// RequireSuperAdmin gates the console routes on the token's super-admin flag.
func (h *Handler) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		if claims == nil || !claims.IsSuperAdmin {
			writeError(w, r, "acesso restrito", "FORBIDDEN", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  *core.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req core.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, tenant, err := h.svc.Auth.RegisterTenant(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	token, err := auth.Sign(h.cfg.JWTSecret, user.ID, tenant.ID, user.Role, user.IsSuperAdmin, h.cfg.TokenTTL)
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	h.svc.Audit.Log(r.Context(), tenant.ID, &user.ID, "register", "tenant", &tenant.ID, tenant.Slug)
	writeCreated(w, sessionResponse{Token: token, User: user})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	token, err := auth.Sign(h.cfg.JWTSecret, user.ID, user.TenantID, user.Role, user.IsSuperAdmin, h.cfg.TokenTTL)
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}
	writeJSON(w, sessionResponse{Token: token, User: user})
}

// forgotPassword always answers 200 with the same message so the endpoint
// cannot be used to probe which emails exist.
func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.svc.Auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if token != "" {
		link := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.PublicBaseURL, token)
		body := fmt.Sprintf("Olá,\n\nUse o link abaixo para redefinir sua senha. Ele expira em 1 hora.\n\n%s\n", link)
		if err := h.svc.Mailer.Send(req.Email, "Redefinição de senha", body); err != nil {
			h.log.Errorw("reset mail delivery failed", "error", err)
		}
	}

	writeJSON(w, map[string]string{"message": "se o email existir, um link de redefinição foi enviado"})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "senha redefinida com sucesso"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	user, err := h.svc.Auth.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Auth.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}
