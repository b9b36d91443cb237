package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gonkalabs/termsplain/internal/flags"
	"github.com/gonkalabs/termsplain/internal/gemini"
	"github.com/gonkalabs/termsplain/internal/metrics"
	"github.com/gonkalabs/termsplain/internal/normalize"
)

// Input caps, applied after trimming.
const (
	MaxLeaseLength    = 20000
	MaxClauseLength   = 8000
	MaxQuestionLength = 500

	maxBodyBytes = 2 << 20
)

// Generator produces model-backed content. *gemini.Generator implements it.
type Generator interface {
	AnalyzeSummary(ctx context.Context, text string, findings []flags.Finding) ([]string, error)
	ExplainClause(ctx context.Context, clause string) (normalize.ExplainResult, error)
	LeaseQA(ctx context.Context, question, text string) (normalize.QAResult, error)
}

// Handler implements all HTTP endpoints.
type Handler struct {
	rules   *flags.RuleSet
	gen     Generator    // nil when no API key is configured
	limiter *RateLimiter // nil disables rate limiting
}

// New creates a Handler. A nil generator makes every generated section fall
// back to static content; a nil limiter disables rate limiting.
func New(rules *flags.RuleSet, gen Generator, limiter *RateLimiter) *Handler {
	if rules == nil {
		rules = flags.DefaultRules()
	}
	return &Handler{rules: rules, gen: gen, limiter: limiter}
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("POST /analyze", h.limited(h.analyze))
	mux.Handle("POST /explain", h.limited(h.explain))
	mux.Handle("POST /qa", h.limited(h.qa))
}

func (h *Handler) limited(fn http.HandlerFunc) http.Handler {
	if h.limiter == nil {
		return fn
	}
	return h.limiter.Middleware(fn)
}

// ---------- endpoints ----------

// AnalyzeResponse is the body of a successful POST /analyze.
type AnalyzeResponse struct {
	SummaryBullets []string        `json:"summaryBullets"`
	Flags          []flags.Finding `json:"flags"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text normalize.LooseString `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if normalize.IsEmpty(string(req.Text)) {
		writeErr(w, http.StatusBadRequest, "Lease text is required.")
		return
	}
	text := normalize.SafeTrim(string(req.Text), MaxLeaseLength)

	findings := h.rules.Detect(text)
	for _, f := range findings {
		metrics.Get().Findings.WithLabelValues(f.ID, string(f.Severity)).Inc()
	}

	bullets := slices.Clone(fallbackSummaryBullets)
	if h.gen == nil {
		h.fellBack("analyze", gemini.ErrMissingAPIKey)
	} else if got, err := h.gen.AnalyzeSummary(r.Context(), text, findings); err != nil {
		h.fellBack("analyze", err)
	} else {
		slog.Info("gemini summary ok", "bullets", len(got))
		bullets = got
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{SummaryBullets: bullets, Flags: findings})
}

func (h *Handler) explain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Clause normalize.LooseString `json:"clause"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if normalize.IsEmpty(string(req.Clause)) {
		writeErr(w, http.StatusBadRequest, "Clause text is required.")
		return
	}
	clause := normalize.SafeTrim(string(req.Clause), MaxClauseLength)

	resp := fallbackExplain()
	if h.gen == nil {
		h.fellBack("explain", gemini.ErrMissingAPIKey)
	} else if got, err := h.gen.ExplainClause(r.Context(), clause); err != nil {
		h.fellBack("explain", err)
	} else {
		resp = got
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) qa(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question normalize.LooseString `json:"question"`
		Text     normalize.LooseString `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if normalize.IsEmpty(string(req.Question)) {
		writeErr(w, http.StatusBadRequest, "Question is required.")
		return
	}
	if normalize.IsEmpty(string(req.Text)) {
		writeErr(w, http.StatusBadRequest, "Lease text is required.")
		return
	}
	question := normalize.SafeTrim(string(req.Question), MaxQuestionLength)
	text := normalize.SafeTrim(string(req.Text), MaxLeaseLength)

	resp := fallbackQA()
	if h.gen == nil {
		h.fellBack("qa", gemini.ErrMissingAPIKey)
	} else if got, err := h.gen.LeaseQA(r.Context(), question, text); err != nil {
		h.fellBack("qa", err)
	} else {
		resp = got
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) fellBack(op string, err error) {
	metrics.Get().Fallbacks.WithLabelValues(op).Inc()
	slog.Warn("generation failed, using fallback", "op", op, "err", err)
}

// ---------- helpers ----------

// decodeBody reads a JSON object from the request. An empty body decodes as
// an empty object. It writes the error response itself and reports whether
// the caller should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeErr(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeErr(w, http.StatusBadRequest, "invalid JSON body")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
