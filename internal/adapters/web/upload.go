package web

import (
	"net/http"

	"financesaas/internal/storage"
)

// upload receives a multipart attachment, stores it under an unguessable key,
// and returns the public path a transaction can reference.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+4096)

	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		writeError(w, r, "arquivo excede o limite de 5 MB", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "campo 'file' é obrigatório", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !storage.AllowedType(contentType) {
		writeError(w, r, "tipo de arquivo não suportado (use JPEG, PNG, WebP ou PDF)", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	key, err := h.svc.Storage.Save(contentType, file)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeCreated(w, map[string]string{
		"key":  key,
		"path": "/uploads/" + key,
	})
}
