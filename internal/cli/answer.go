package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/pipeline"
	"github.com/spf13/cobra"
)

var answerOut string

// answerCmd represents the answer command
var answerCmd = &cobra.Command{
	Use:   "answer <case.json>",
	Short: "Generate a grounded answer from context chunks",
	Long: `Answer asks the configured provider to answer the case's question
using only its context chunks, citing them as [Chunk N].

The case file is a JSON object with question and chunks. The answer and
its citations print to stdout; use check to verify them afterwards.

Example:
  paperqa answer case.json
  paperqa answer case.json --json answer.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswer,
}

func init() {
	rootCmd.AddCommand(answerCmd)

	answerCmd.Flags().StringVar(&answerOut, "json", "", "output JSON path (optional)")
	answerCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "answer timeout")
	answerCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the answer cache")
	answerCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	answerCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	answerCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "provider base URL override")
}

func runAnswer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c, err := readCase(args[0])
	if err != nil {
		return err
	}
	if len(c.Chunks) == 0 {
		return fmt.Errorf("case file has no context chunks")
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.Answer(ctx, c.Question, c.Chunks)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	fmt.Println(result.Answer)
	if result.Citations != "" {
		fmt.Printf("\nCitations: %s\n", result.Citations)
	}

	if answerOut != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal answer: %w", err)
		}
		if err := os.WriteFile(answerOut, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", answerOut, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", answerOut)
		}
	}

	return nil
}
