// verify-agent is a one-shot smoke test for the OpenAI integration: it runs
// the categorizer and the insight generator against a sample description and
// prints the results.
//
// Usage: go run ./cmd/verify-agent
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"financesaas/internal/ai"
	"financesaas/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	zlog := logger.New()
	agent := ai.NewAgent(apiKey, zlog)
	ctx := context.Background()

	description := "Pagamento de aluguel do escritório referente a agosto"
	fmt.Printf("CATEGORIZING: %s\n", description)
	category := agent.Categorize(ctx, description)
	fmt.Printf("Category: %s\n", category)

	fmt.Println("\nGENERATING INSIGHT (empty period)...")
	insight := agent.GenerateInsight(ctx, nil, "08/2026")
	fmt.Printf("Health: %d (%s)\n", insight.HealthScore, insight.HealthLabel)
	fmt.Printf("Summary: %s\n", insight.Summary)
	for _, tip := range insight.SavingsTips {
		fmt.Printf("- %s\n", tip)
	}
}
