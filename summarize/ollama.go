package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OllamaClient talks to a hosted model server through the Ollama chat API.
type OllamaClient struct {
	baseURL       string
	model         string
	maxInputChars int
	http          *http.Client
	logger        *logrus.Logger
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

func NewOllamaClient(cfg Config) *OllamaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OllamaClient{
		baseURL:       strings.TrimSuffix(cfg.OllamaURL, "/"),
		model:         cfg.OllamaModel,
		maxInputChars: cfg.MaxInputChars,
		http:          &http.Client{Timeout: timeout},
		logger:        logrus.StandardLogger(),
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) Summarize(ctx context.Context, text string) (string, error) {
	payload := ollamaChatRequest{
		Model: c.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: summaryPrompt},
			{Role: "user", Content: truncate(text, c.maxInputChars)},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: 0.2,
			NumPredict:  512,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encoding chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrBackendUnavailable, "ollama: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.Wrapf(ErrBackendRejected, "ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", errors.Wrap(ErrBackendRejected, "decoding ollama response")
	}
	if chatResp.Error != "" {
		return "", errors.Wrapf(ErrBackendRejected, "ollama: %s", chatResp.Error)
	}

	summary := strings.TrimSpace(chatResp.Message.Content)
	if summary == "" {
		return "", errors.Wrap(ErrBackendRejected, "ollama returned an empty summary")
	}

	c.logger.WithFields(logrus.Fields{
		"model":          c.model,
		"summary_length": len(summary),
	}).Debug("Generated summary")

	return summary, nil
}
