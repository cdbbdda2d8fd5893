// Package provider calls a remote language model to find writing issues.
// Every failure degrades to an empty result: the local detector always
// remains the source of truth.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Supported provider kinds.
const (
	KindGemini = "gemini"
	KindOpenAI = "openai"
)

// Kinds lists the supported provider kinds.
var Kinds = []string{KindGemini, KindOpenAI}

const (
	DefaultTimeout     = 20 * time.Second
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1024
)

var (
	// ErrNoAPIKey is returned by New when the configured key is empty.
	ErrNoAPIKey = errors.New("provider api key is not set")
	// ErrUnknownKind is returned by New for an unsupported provider kind.
	ErrUnknownKind = errors.New("unknown provider kind")
)

// Config configures a Client.
type Config struct {
	Kind     string
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
	// RateLimit is the sustained number of requests per second. Zero
	// disables limiting.
	RateLimit float64
	Burst     int
}

// generator sends a prompt to a model and returns its raw reply.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// Client analyzes text with a remote model.
type Client struct {
	kind    string
	gen     generator
	limiter *rate.Limiter
	timeout time.Duration
	log     zerolog.Logger
}

// New builds a Client for cfg.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	var gen generator
	switch strings.ToLower(cfg.Kind) {
	case KindGemini:
		gen = newGemini(cfg)
	case KindOpenAI:
		gen = newOpenAI(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	return &Client{
		kind:    strings.ToLower(cfg.Kind),
		gen:     gen,
		limiter: limiter,
		timeout: cfg.Timeout,
		log:     log,
	}, nil
}

// Kind returns the provider kind.
func (c *Client) Kind() string { return c.kind }

// Check asks the model for issues in text. Issues are sanitized against text
// before they are returned.
func (c *Client) Check(ctx context.Context, text, language string) ([]issue.Issue, error) {
	if strings.TrimSpace(text) == "" {
		return []issue.Issue{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.gen.generate(ctx, Prompt(text, language))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.kind, err)
	}

	raw, err := ParseIssues(reply)
	if err != nil {
		return nil, fmt.Errorf("parse %s reply: %w", c.kind, err)
	}

	out, dropped := Sanitize(text, raw)
	if dropped > 0 {
		c.log.Debug().Int("dropped", dropped).Int("kept", len(out)).Msg("sanitized provider issues")
	}
	return out, nil
}

// Analyze is Check with failures logged and reported as no issues.
func (c *Client) Analyze(ctx context.Context, text, language string) []issue.Issue {
	start := time.Now()
	out, err := c.Check(ctx, text, language)
	if err != nil {
		c.log.Warn().Err(err).Str("provider", c.kind).Dur("elapsed", time.Since(start)).Msg("remote analysis failed")
		return []issue.Issue{}
	}
	c.log.Debug().Str("provider", c.kind).Int("issues", len(out)).Dur("elapsed", time.Since(start)).Msg("remote analysis")
	return out
}

// Prompt builds the analysis request for text.
func Prompt(text, language string) string {
	var b strings.Builder
	b.WriteString("Analyze the following text for grammar, style, punctuation, capitalization, and clarity issues in ")
	b.WriteString(language)
	b.WriteString(" language.\n")
	b.WriteString("Format your response as a JSON object with an array of issues. For each issue, include:\n")
	b.WriteString("- id (a unique string)\n")
	b.WriteString("- type (one of: \"grammar\", \"style\", \"clarity\", \"punctuation\", \"capitalization\")\n")
	b.WriteString("- message (short description of the issue)\n")
	b.WriteString("- text (the problematic text)\n")
	b.WriteString("- position (number, where in the original text the issue occurs)\n")
	b.WriteString("- length (number, the length of the problematic text)\n")
	b.WriteString("- suggestions (array of strings with possible corrections)\n\n")
	b.WriteString("Here's the text to analyze: ")
	b.WriteString(fmt.Sprintf("%q", text))
	return b.String()
}
