// Package pipeline wires providers, similarity, caching, and storage into
// the complete question-answer verification flow.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/cache"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/qa"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/semantic"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/store"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/verify"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/worker"
)

// Pipeline orchestrates the complete verification process
type Pipeline struct {
	provider   llm.Provider
	generator  *qa.Generator
	detector   *verify.Detector
	summarizer *llm.Summarizer // Optional LLM explanation (nil if disabled)
	cache      cache.Cache     // nil when caching is disabled
	archive    *store.Archive  // nil when the archive is disabled
	renderer   *Renderer
	config     *model.Config
}

// NewPipeline creates a pipeline from validated configuration. The context
// covers startup work only (archive connection), not later checks.
func NewPipeline(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.Embeddings))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	if base == nil {
		return nil, fmt.Errorf("no LLM provider configured (set llm.provider to openai, anthropic, or ollama)")
	}

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	provider := newLimitedProvider(base, limiter)

	var similarity semantic.Similarity = semantic.NewLexicalSimilarity()
	if cfg.Embeddings.Enabled {
		if embedder, ok := base.(llm.Embedder); ok {
			similarity = semantic.NewEmbeddingSimilarity(newLimitedEmbedder(embedder, limiter, base.Name()))
		} else {
			fmt.Printf("Warning: provider %s does not support embeddings, using lexical similarity\n", base.Name())
		}
	}

	var archive *store.Archive
	if cfg.Store.Enabled {
		archive, err = store.NewArchive(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("initialize verdict archive: %w", err)
		}
		if err := archive.EnsureSchema(ctx); err != nil {
			archive.Close()
			return nil, fmt.Errorf("prepare verdict archive: %w", err)
		}
	}

	var summarizer *llm.Summarizer
	if cfg.Output.Explain {
		summarizer = llm.NewSummarizerWithProvider(provider, llm.ConfigFromModel(cfg.LLM, cfg.Embeddings))
	}

	return &Pipeline{
		provider:   provider,
		generator:  qa.NewGenerator(provider),
		detector:   verify.NewDetector(provider, similarity, cfg),
		summarizer: summarizer,
		cache:      buildCache(cfg),
		archive:    archive,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
	}, nil
}

// buildCache constructs the configured cache backend. A broken redis
// connection degrades to the in-memory backend instead of failing startup.
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	switch cfg.Cache.Backend {
	case "disk":
		return cache.NewDiskCache(cacheDir(cfg), cfg.Cache.TTL)
	case "layered":
		return cache.NewLayeredCache(cfg.Cache.TTL, cacheDir(cfg), cfg.Cache.TTL)
	case "redis":
		c, err := cache.NewRedisCache(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			fmt.Printf("Warning: redis cache unavailable, using memory cache: %v\n", err)
			return cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
		return c
	default: // "", "memory"
		return cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}
}

func cacheDir(cfg *model.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return ".paperqa-cache"
}

// CheckRequest is one answered question to verify
type CheckRequest struct {
	Question string
	Answer   string
	Chunks   []model.ContextChunk
}

// Check verifies one answered question. Identical requests are served from
// the cache, marked Cached, without re-running verification.
func (p *Pipeline) Check(ctx context.Context, req CheckRequest) (*model.HallucinationVerdict, error) {
	key := cache.VerdictKey(p.provider.Name(), p.config.LLM.Model, req.Question, req.Answer, req.Chunks)

	if p.cache != nil {
		if data, found := p.cache.Get(key); found {
			var verdict model.HallucinationVerdict
			if err := json.Unmarshal(data, &verdict); err != nil {
				// Corrupted entry: drop it and verify from scratch
				_ = p.cache.Delete(key)
			} else {
				slog.Debug("verdict cache hit", "tier", verdict.Tier, "score", verdict.Score)
				verdict.Cached = true
				return &verdict, nil
			}
		}
	}

	verdict, err := p.detector.Check(ctx, verify.Request{
		Question:   req.Question,
		Answer:     req.Answer,
		Chunks:     req.Chunks,
		Regenerate: p.generator.RegenerateFunc(req.Chunks, p.config.Consistency.Temperature),
	})
	if err != nil {
		return nil, err
	}

	verdict.Provider = p.provider.Name()
	verdict.Model = p.config.LLM.Model

	// The explanation is generated AFTER aggregation and never affects the score
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		summary, err := p.summarizer.Explain(ctx, *verdict, req.Chunks)
		if err != nil {
			fmt.Printf("Warning: LLM explanation failed: %v\n", err)
		} else if summary != nil {
			verdict.Summary = summary
		}
	}

	if p.cache != nil {
		if data, err := json.Marshal(verdict); err == nil {
			if err := p.cache.Set(key, data, p.config.Cache.TTL); err != nil {
				fmt.Printf("Warning: failed to cache verdict: %v\n", err)
			}
		}
	}

	if p.archive != nil {
		if err := p.archive.Save(ctx, verdict); err != nil {
			fmt.Printf("Warning: failed to archive verdict: %v\n", err)
		}
	}

	return verdict, nil
}

// Answer generates a grounded answer for the question from the given chunks
func (p *Pipeline) Answer(ctx context.Context, question string, chunks []model.ContextChunk) (*qa.Result, error) {
	key := cache.AnswerKey(p.provider.Name(), p.config.LLM.Model, question, chunks)

	if p.cache != nil {
		if data, found := p.cache.Get(key); found {
			var result qa.Result
			if err := json.Unmarshal(data, &result); err == nil {
				return &result, nil
			}
			_ = p.cache.Delete(key)
		}
	}

	result, err := p.generator.Generate(ctx, question, chunks)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := p.cache.Set(key, data, p.config.Cache.TTL); err != nil {
				fmt.Printf("Warning: failed to cache answer: %v\n", err)
			}
		}
	}

	return result, nil
}

// CheckCase implements worker.Checker. A case without an answer gets one
// generated from its chunks before verification.
func (p *Pipeline) CheckCase(ctx context.Context, c worker.Case) (*model.HallucinationVerdict, error) {
	answer := c.Answer
	if strings.TrimSpace(answer) == "" {
		result, err := p.Answer(ctx, c.Question, c.Chunks)
		if err != nil {
			return nil, fmt.Errorf("generate answer for %s: %w", c.ID, err)
		}
		answer = result.Answer
	}

	return p.Check(ctx, CheckRequest{
		Question: c.Question,
		Answer:   answer,
		Chunks:   c.Chunks,
	})
}

// RenderVerdict renders the verdict to the specified outputs
func (p *Pipeline) RenderVerdict(verdict *model.HallucinationVerdict, jsonPath string, mdPath string, verbose bool) error {
	// Render JSON
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(verdict, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	// Render Markdown
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(verdict, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Render LLM explanation to separate file if present
	if verdict.Summary != nil && verdict.Summary.Enabled && mdPath != "" {
		llmMdPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		llmMarkdown := llm.RenderSeparateMarkdown(verdict.Summary)
		if err := p.renderer.RenderLLMMarkdown(llmMarkdown, llmMdPath); err != nil {
			fmt.Printf("Warning: Failed to write LLM explanation: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM Explanation: %s\n", llmMdPath)
		}
	}

	// Print summary to stdout
	p.renderer.RenderSummary(verdict)

	return nil
}

// Renderer exposes the verdict renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Close releases held connections
func (p *Pipeline) Close() {
	if p.archive != nil {
		p.archive.Close()
	}
	if closer, ok := p.cache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
