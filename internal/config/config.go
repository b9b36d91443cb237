package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cfg holds all runtime configuration loaded from environment variables.
type Cfg struct {
	// Gemini
	// Populated from GEMINI_API_KEYS (comma list) or GEMINI_API_KEY (single).
	// Empty is allowed: the server then answers with static fallbacks.
	APIKeys       []string
	Model         string        // GEMINI_MODEL=gemini-2.5-flash
	BaseURL       string        // GEMINI_BASE_URL
	Timeout       time.Duration // GEMINI_TIMEOUT=30s
	UpstreamRPM   int           // GEMINI_RATE_LIMIT_PER_MINUTE=0 (0 = unlimited)
	RedactEnabled bool          // REDACT_PII=true masks e-mails and phones before prompting

	// Cache
	CacheTTL  time.Duration // CACHE_TTL=10m
	CacheSize int           // CACHE_SIZE=1024

	// Detection
	RulesFile string // RULES_FILE, empty uses the built-in rules

	// Server
	ListenAddr         string     // PORT=4000
	CORSOrigin         string     // CORS_ORIGIN=http://localhost:3000
	RateLimitPerMinute int        // RATE_LIMIT_PER_MINUTE=30
	LogLevel           slog.Level // LOG_LEVEL=info
}

// Load reads .env (if present) then environment variables and returns Cfg.
func Load() (*Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Cfg, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	timeout, err := parseDuration(get("GEMINI_TIMEOUT", "30s"), "GEMINI_TIMEOUT")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration(get("CACHE_TTL", "10m"), "CACHE_TTL")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt(get("CACHE_SIZE", "1024"), "CACHE_SIZE")
	if err != nil {
		return nil, err
	}
	rpm, err := parseInt(get("RATE_LIMIT_PER_MINUTE", "30"), "RATE_LIMIT_PER_MINUTE")
	if err != nil {
		return nil, err
	}
	upstreamRPM, err := parseInt(get("GEMINI_RATE_LIMIT_PER_MINUTE", "0"), "GEMINI_RATE_LIMIT_PER_MINUTE")
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return &Cfg{
		APIKeys:            loadKeys(getenv),
		Model:              get("GEMINI_MODEL", "gemini-2.5-flash"),
		BaseURL:            strings.TrimRight(get("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		Timeout:            timeout,
		UpstreamRPM:        upstreamRPM,
		RedactEnabled:      parseBool(getenv("REDACT_PII")),
		CacheTTL:           cacheTTL,
		CacheSize:          cacheSize,
		RulesFile:          get("RULES_FILE", ""),
		ListenAddr:         ":" + get("PORT", "4000"),
		CORSOrigin:         get("CORS_ORIGIN", "http://localhost:3000"),
		RateLimitPerMinute: rpm,
		LogLevel:           level,
	}, nil
}

// loadKeys builds the API key list.
//
// Multi-key format (GEMINI_API_KEYS):
//
//	GEMINI_API_KEYS=key1,key2,key3
//
// Single-key fallback:
//
//	GEMINI_API_KEY=...
func loadKeys(getenv func(string) string) []string {
	var keys []string
	if multi := strings.TrimSpace(getenv("GEMINI_API_KEYS")); multi != "" {
		for _, part := range strings.Split(multi, ",") {
			if part = strings.TrimSpace(part); part != "" {
				keys = append(keys, part)
			}
		}
	}
	if len(keys) == 0 {
		if k := strings.TrimSpace(getenv("GEMINI_API_KEY")); k != "" {
			keys = []string{k}
		}
	}
	return keys
}

func parseBool(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "1" || strings.EqualFold(raw, "true")
}

func parseDuration(raw, name string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return d, nil
}

func parseInt(raw, name string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", name, n)
	}
	return n, nil
}
