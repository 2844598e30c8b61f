package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"financesaas/internal/core"
)

// brokenAgent points the client at a server that always fails, so every call
// exercises the degraded path.
func brokenAgent(t *testing.T) *Agent {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"upstream down"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	return &Agent{client: &client, log: zap.NewNop().Sugar()}
}

func TestGenerateInsight_UnavailableModel(t *testing.T) {
	a := brokenAgent(t)

	insight := a.GenerateInsight(context.Background(), nil, "08/2026")

	// A zero score marks the assessment as unavailable; anything else could
	// be mistaken for a genuine diagnosis.
	if insight.HealthScore != 0 {
		t.Errorf("health score = %d, want 0", insight.HealthScore)
	}
	if insight.HealthLabel != "critica" {
		t.Errorf("health label = %q, want %q", insight.HealthLabel, "critica")
	}
	if insight.Summary != "Não foi possível gerar a análise no momento. Tente novamente mais tarde." {
		t.Errorf("summary = %q, want the apology message", insight.Summary)
	}
	if len(insight.SavingsTips) != 0 {
		t.Errorf("savings tips = %v, want none", insight.SavingsTips)
	}
}

func TestCategorize_UnavailableModel(t *testing.T) {
	a := brokenAgent(t)

	if got := a.Categorize(context.Background(), "Pagamento de fornecedor"); got != core.DefaultCategoryName {
		t.Errorf("category = %q, want %q", got, core.DefaultCategoryName)
	}
}
