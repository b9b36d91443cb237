package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gonkalabs/termsplain/internal/cache"
	"github.com/gonkalabs/termsplain/internal/flags"
	"github.com/gonkalabs/termsplain/internal/metrics"
	"github.com/gonkalabs/termsplain/internal/normalize"
	"github.com/gonkalabs/termsplain/internal/redact"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const (
	opSummary = "generateAnalyzeSummary"
	opExplain = "generateExplainClause"
	opQA      = "generateLeaseQa"
)

// Model generates JSON text for a prompt. *Client implements it.
type Model interface {
	Generate(ctx context.Context, model, prompt string, schema Schema) (string, error)
}

// Generator produces normalized results from a Model, caching each one
// under a key derived from the operation, the model name and the inputs.
type Generator struct {
	model    Model
	name     string
	cache    cache.Cache
	redactor *redact.Redactor
}

// Option configures a Generator.
type Option func(*Generator)

// WithCache sets the result cache. The default is cache.Nop.
func WithCache(c cache.Cache) Option {
	return func(g *Generator) { g.cache = c }
}

// WithRedactor masks contact details in lease text before it is prompted
// and restores them in the model output.
func WithRedactor(r *redact.Redactor) Option {
	return func(g *Generator) { g.redactor = r }
}

// NewGenerator creates a Generator for the named model.
func NewGenerator(m Model, modelName string, opts ...Option) *Generator {
	if modelName == "" {
		modelName = DefaultModel
	}
	g := &Generator{model: m, name: modelName, cache: cache.Nop{}}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AnalyzeSummary returns three to six summary bullets for a lease.
func (g *Generator) AnalyzeSummary(ctx context.Context, text string, findings []flags.Finding) ([]string, error) {
	encoded, err := json.Marshal(findings)
	if err != nil {
		return nil, fmt.Errorf("analyze summary: %w", err)
	}
	key := cache.MakeKey(opSummary, g.name, strings.TrimSpace(text), string(encoded))
	if v, ok := g.cached(opSummary, key); ok {
		if bullets, ok := v.([]string); ok {
			return slices.Clone(bullets), nil
		}
	}

	var p normalize.SummaryPayload
	err = g.generate(ctx, opSummary, text, func(safe string) string {
		return summaryPrompt(safe, findings)
	}, summarySchema, &p)
	if err != nil {
		return nil, fmt.Errorf("analyze summary: %w", err)
	}

	bullets := normalize.NormalizeSummary(p.SummaryBullets)
	g.cache.Set(key, slices.Clone(bullets))
	return bullets, nil
}

// ExplainClause returns a plain-English explanation of one clause.
func (g *Generator) ExplainClause(ctx context.Context, clause string) (normalize.ExplainResult, error) {
	key := cache.MakeKey(opExplain, g.name, strings.TrimSpace(clause))
	if v, ok := g.cached(opExplain, key); ok {
		if res, ok := v.(normalize.ExplainResult); ok {
			return res, nil
		}
	}

	var p normalize.ExplainPayload
	if err := g.generate(ctx, opExplain, clause, explainPrompt, explainSchema, &p); err != nil {
		return normalize.ExplainResult{}, fmt.Errorf("explain clause: %w", err)
	}

	res := normalize.NormalizeExplain(p)
	g.cache.Set(key, res)
	return res, nil
}

// LeaseQA answers a question about a lease, grounding the answer's
// citations in the lease text.
func (g *Generator) LeaseQA(ctx context.Context, question, text string) (normalize.QAResult, error) {
	key := cache.MakeKey(opQA, g.name, strings.TrimSpace(question), strings.TrimSpace(text))
	if v, ok := g.cached(opQA, key); ok {
		if res, ok := v.(normalize.QAResult); ok {
			return res, nil
		}
	}

	var p normalize.QAPayload
	err := g.generate(ctx, opQA, text, func(safe string) string {
		return qaPrompt(question, safe)
	}, qaSchema, &p)
	if err != nil {
		return normalize.QAResult{}, fmt.Errorf("lease qa: %w", err)
	}

	res := normalize.NormalizeQA(question, text, p)
	g.cache.Set(key, res)
	return res, nil
}

func (g *Generator) cached(op, key string) (any, bool) {
	v, ok := g.cache.Get(key)
	if ok {
		slog.Info("gemini: cache hit", "op", op)
		metrics.Get().CacheHits.WithLabelValues(op).Inc()
	} else {
		metrics.Get().CacheMisses.WithLabelValues(op).Inc()
	}
	return v, ok
}

// generate prompts the model with the (optionally redacted) input and
// decodes the restored response into v.
func (g *Generator) generate(ctx context.Context, op, input string, prompt func(string) string, schema Schema, v any) error {
	var tm *redact.TokenMap
	if g.redactor != nil {
		input, tm = g.redactor.Redact(input)
		if n := tm.Count(); n > 0 {
			slog.Info("gemini: redacted contact details", "op", op, "values", n)
		}
	}

	raw, err := g.model.Generate(ctx, g.name, prompt(input), schema)
	if err == nil {
		err = ParseFencedJSON(tm.Restore(raw), v)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Get().Generations.WithLabelValues(op, outcome).Inc()
	return err
}
