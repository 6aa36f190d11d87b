package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/evalsuite"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	evalOut     string
	evalTimeout time.Duration
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <suite.jsonl>",
	Short: "Run a benchmark suite and summarize verification quality",
	Long: `Eval runs every case in a benchmark suite through the full
verification flow and aggregates the outcomes:
- Average hallucination score and tier distribution
- Expected-tier match rate for cases that declare one
- Flagged and degraded counts, per-case rows

Suite files hold one JSON case per line; a case may add expect_tier
(LOW, MEDIUM, or HIGH) to be counted against the actual verdict.

Example:
  paperqa eval suite.jsonl
  paperqa eval suite.jsonl --out results.json --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalOut, "out", "", "write full results JSON to this path (optional)")
	evalCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: config value)")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 30*time.Minute, "total timeout for the suite")
	evalCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the verdict cache (force fresh checks)")
	evalCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	evalCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	evalCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "provider base URL override")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	cases, err := evalsuite.ReadSuite(args[0])
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases in %s", args[0])
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  paperqa Evaluation Suite\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Suite file:   %s\n", args[0])
	fmt.Fprintf(os.Stderr, "  Cases:        %d\n", len(cases))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Provider:     %s\n", cfg.LLM.Provider)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	runner := evalsuite.NewRunner(p, cfg.Concurrency.Workers)
	summary := runner.Run(ctx, cases)

	fmt.Println()
	fmt.Print(summary.Format())
	fmt.Println()

	if evalOut != "" {
		if err := summary.WriteJSON(evalOut); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote results: %s\n", evalOut)
	}

	return nil
}
