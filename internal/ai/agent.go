package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"go.uber.org/zap"

	"financesaas/internal/core"
)

// Insight is the AI-generated financial read on a period.
type Insight struct {
	HealthScore int      `json:"health_score" jsonschema:"minimum=0,maximum=100" jsonschema_description:"Overall financial health from 0 (critical) to 100 (excellent)"`
	HealthLabel string   `json:"health_label" jsonschema_description:"One of: excelente, boa, regular, preocupante, critica"`
	Summary     string   `json:"summary" jsonschema_description:"Two or three sentences in Brazilian Portuguese summarizing the period"`
	SavingsTips []string `json:"savings_tips" jsonschema_description:"Up to three actionable savings suggestions in Brazilian Portuguese"`
}

// knownCategories constrains the categorizer to a stable vocabulary so
// tenants do not accumulate near-duplicate AI-invented categories.
var knownCategories = []string{
	"Alimentação", "Transporte", "Moradia", "Saúde", "Educação",
	"Lazer", "Vendas", "Serviços", "Impostos", "Fornecedores",
	"Salários", "Marketing", core.DefaultCategoryName,
}

type Agent struct {
	client *openai.Client
	log    *zap.SugaredLogger
}

func NewAgent(apiKey string, log *zap.SugaredLogger) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, log: log}
}

// Categorize names a category for a transaction description. It never fails:
// any API error, empty answer, or out-of-vocabulary answer falls back to the
// default category.
func (a *Agent) Categorize(ctx context.Context, description string) string {
	prompt := fmt.Sprintf(`Classifique a transação financeira abaixo em exatamente uma das categorias listadas.
Responda somente com o nome da categoria, nada mais.

Categorias: %s

Transação: %s`, strings.Join(knownCategories, ", "), description)

	resp, err := a.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4oMini),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
	})
	if err != nil {
		a.log.Warnw("ai categorization failed", "error", err)
		return core.DefaultCategoryName
	}

	answer := strings.TrimSpace(resp.OutputText())
	for _, c := range knownCategories {
		if strings.EqualFold(answer, c) {
			return c
		}
	}
	a.log.Debugw("ai returned unknown category", "answer", answer)
	return core.DefaultCategoryName
}

// GenerateInsight asks the model for a structured health assessment of the
// period's transactions. On any failure it returns a neutral fallback insight
// rather than an error, so the dashboard always renders.
func (a *Agent) GenerateInsight(ctx context.Context, transactions []core.Transaction, periodLabel string) *Insight {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Você é um consultor financeiro para pequenas empresas brasileiras.
Analise as transações do período %q e produza um diagnóstico.

Transações:
`, periodLabel)
	for _, t := range transactions {
		fmt.Fprintf(&sb, "- %s | %s | %s | R$ %s | %s\n",
			t.Date.Format("2006-01-02"), t.Type, t.Status, t.Amount.StringFixed(2), t.Description)
	}

	schemaJSON, err := json.Marshal(insightSchema())
	if err != nil {
		a.log.Warnw("insight schema marshal failed", "error", err)
		return fallbackInsight()
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		a.log.Warnw("insight schema unmarshal failed", "error", err)
		return fallbackInsight()
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(sb.String()),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "financial_insight",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A financial health assessment for a period"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		a.log.Warnw("ai insight failed", "error", err)
		return fallbackInsight()
	}

	content := resp.OutputText()
	if content == "" {
		a.log.Warnw("ai insight returned empty content")
		return fallbackInsight()
	}

	var insight Insight
	if err := json.Unmarshal([]byte(content), &insight); err != nil {
		a.log.Warnw("ai insight parse failed", "error", err)
		return fallbackInsight()
	}
	if insight.HealthScore < 0 {
		insight.HealthScore = 0
	}
	if insight.HealthScore > 100 {
		insight.HealthScore = 100
	}
	return &insight
}

func insightSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Insight
	return reflector.Reflect(v)
}

// fallbackInsight is returned whenever the model cannot be reached or its
// answer cannot be parsed. The zero score marks the assessment as unavailable
// so clients do not mistake it for a genuine mid-range diagnosis.
func fallbackInsight() *Insight {
	return &Insight{
		HealthScore: 0,
		HealthLabel: "critica",
		Summary:     "Não foi possível gerar a análise no momento. Tente novamente mais tarde.",
		SavingsTips: []string{},
	}
}
