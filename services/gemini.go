package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"
)

const (
	ModelName      = "gemini-2.5-flash"
	EmbeddingModel = "text-embedding-004"

	// PromptCeiling is the size limit callers must truncate prompt material
	// to before submission. Truncation is the caller's responsibility.
	PromptCeiling = 4000
)

// AIGateway is the contract the session logic expects from the hosted model.
// Every call is try-once: failures surface as ErrUpstreamUnavailable and the
// call site must degrade to a deterministic fallback of the same shape.
type AIGateway interface {
	// GenerateStructured sends a prompt and unmarshals the JSON response
	// into out. A malformed response is a gateway failure, not a caller
	// error.
	GenerateStructured(ctx context.Context, prompt string, out any) error

	// GenerateEmbedding returns an embedding vector for the given text.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Available reports whether the gateway is configured at all.
	Available() bool
}

// GeminiGateway implements AIGateway against the Gemini API.
type GeminiGateway struct {
	client  *genai.Client
	timeout time.Duration
}

func NewGeminiGateway(apiKey string, timeout time.Duration) *GeminiGateway {
	if apiKey == "" {
		slog.Warn("Gemini API key not configured, AI gateway unavailable")
		return &GeminiGateway{timeout: timeout}
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return &GeminiGateway{timeout: timeout}
	}

	return &GeminiGateway{client: client, timeout: timeout}
}

func (g *GeminiGateway) Available() bool {
	return g != nil && g.client != nil
}

// GenerateStructured asks the model for a JSON response and parses it into
// out. The response text is unwrapped from code-fence markers before parsing;
// if it still does not match the declared shape, the call is treated as an
// upstream failure.
func (g *GeminiGateway) GenerateStructured(ctx context.Context, prompt string, out any) error {
	if !g.Available() {
		return fmt.Errorf("genai client not initialized: %w", ErrUpstreamUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, ModelName, genai.Text(prompt), config)
	if err != nil {
		slog.Error("Gemini generate failed", "error", err)
		return fmt.Errorf("generate content: %v: %w", err, ErrUpstreamUnavailable)
	}

	text := StripCodeFence(result.Text())
	if text == "" {
		slog.Error("Gemini returned empty response")
		return fmt.Errorf("empty response: %w", ErrUpstreamUnavailable)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		slog.Error("Gemini response did not match expected shape", "error", err, "response_length", len(text))
		return fmt.Errorf("parse response: %v: %w", err, ErrUpstreamUnavailable)
	}

	return nil
}

// GenerateEmbedding returns an embedding vector for the given text.
func (g *GeminiGateway) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !g.Available() {
		return nil, fmt.Errorf("genai client not initialized: %w", ErrUpstreamUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, EmbeddingModel, genai.Text(text), nil)
	if err != nil {
		slog.Error("Gemini embedding failed", "error", err)
		return nil, fmt.Errorf("embed content: %v: %w", err, ErrUpstreamUnavailable)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result: %w", ErrUpstreamUnavailable)
	}

	return result.Embeddings[0].Values, nil
}

// StripCodeFence removes markdown code-fence wrapping that models sometimes
// add around JSON payloads.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Truncate bounds prompt material to the gateway's input ceiling, cutting on
// a rune boundary so multi-byte text stays valid UTF-8. Callers truncate
// before submission; the gateway itself never does.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
