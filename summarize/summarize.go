// Package summarize generates transcript summaries through one of two
// interchangeable language-model backends, selected by configuration.
package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrBackendUnavailable covers network failures and timeouts reaching
	// the backend.
	ErrBackendUnavailable = errors.New("summarizer backend unavailable")
	// ErrBackendRejected covers non-2xx responses and malformed model output.
	ErrBackendRejected = errors.New("summarizer backend rejected request")
)

const summaryPrompt = `You are a video summarization expert. Summarize the content of the
following video transcript. The summary should be structured, easy to read, and suitable
for someone who has not watched the video. Include the main topic, key points and
arguments, people and organizations mentioned, important facts or examples, and any
conclusions. Use clear paragraphs with appropriate headings and aim for roughly 200-300
words. If the transcript appears truncated, summarize what is available.`

type Summarizer interface {
	// Summarize produces a summary of the transcript text.
	Summarize(ctx context.Context, text string) (string, error)
	// Name identifies the configured backend, for logging and responses.
	Name() string
}

type Config struct {
	Backend        string // "mistral" or "ollama"
	MistralBaseURL string
	MistralAPIKey  string
	MistralModel   string
	OllamaURL      string
	OllamaModel    string
	Timeout        time.Duration
	MaxInputChars  int
}

// New returns the summarizer for the configured backend. There is no
// fallback between backends; the operator chooses exactly one.
func New(cfg Config) (Summarizer, error) {
	switch cfg.Backend {
	case "mistral":
		return NewMistralClient(cfg)
	case "ollama":
		return NewOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported summarizer backend: %q", cfg.Backend)
	}
}

// truncate trims text to at most max characters, keeping the head and a
// slice of the tail to preserve closing context.
func truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	head := int(float64(max) * 0.8)
	tail := max - head
	return text[:head] + "\n...[content in the middle omitted for length]...\n" + text[len(text)-tail:]
}
