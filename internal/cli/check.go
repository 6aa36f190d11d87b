package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/pipeline"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/worker"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	explain     bool
	llmProvider string
	llmModel    string
	llmBaseURL  string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <case.json>",
	Short: "Verify one answered question against its context chunks",
	Long: `Check runs the full verification flow on a single case:
- Resolve every citation marker against the supplied chunks
- Extract the answer's key claims and test each against the context
- Regenerate the answer and measure self-consistency
- Fuse the signals into a hallucination score and risk tier

The case file is a JSON object with question, answer, and chunks. A case
without an answer gets one generated from its chunks first.

Example:
  paperqa check case.json
  paperqa check case.json --json verdict.json --md verdict.md
  paperqa check case.json --llm-provider ollama --llm-model llama3.1:8b
  paperqa check case.json --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "verdict.json", "output JSON path")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Verification flags
	checkCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the verdict cache (force a fresh check)")
	checkCmd.Flags().BoolVar(&explain, "explain", false, "generate an LLM explanation of the verdict")

	// LLM flags
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	checkCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "provider base URL override")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c, err := readCase(args[0])
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", c.Question)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Chunks: %d\n", len(c.Chunks))
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	verdict, err := p.CheckCase(ctx, c)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if verbose {
		if s := verdict.Signal(model.SignalCitation); s != nil {
			fmt.Fprintf(os.Stderr, "✓ Checked %d citations\n", len(s.Citations))
		}
		if s := verdict.Signal(model.SignalNLI); s != nil {
			fmt.Fprintf(os.Stderr, "✓ Verified %d claims\n", len(s.Claims))
		}
		if s := verdict.Signal(model.SignalConsistency); s != nil {
			fmt.Fprintf(os.Stderr, "✓ Compared %d regeneration samples\n", len(s.Samples))
		}
		if verdict.Summary != nil && verdict.Summary.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM explanation using %s/%s\n", verdict.Summary.Provider, verdict.Summary.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	if err := p.RenderVerdict(verdict, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// readCase loads a single verification case from a JSON file
func readCase(path string) (worker.Case, error) {
	var c worker.Case

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read case file: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse case file: %w", err)
	}
	if strings.TrimSpace(c.Question) == "" {
		return c, fmt.Errorf("case file has no question")
	}

	return c, nil
}

// buildConfig assembles the effective configuration for a verification
// command: config file and environment, then command flags on top.
func buildConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	cfg.Output.Verbose = verbose
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if explain {
		cfg.Output.Explain = true
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}

	if err := resolveCredentials(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
