package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// MistralClient talks to the Mistral cloud API through its OpenAI-compatible
// chat completions endpoint.
type MistralClient struct {
	client        *openai.Client
	model         string
	timeout       time.Duration
	maxInputChars int
	logger        *logrus.Logger
}

func NewMistralClient(cfg Config) (*MistralClient, error) {
	if cfg.MistralAPIKey == "" {
		return nil, errors.New("mistral API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.MistralAPIKey)
	if cfg.MistralBaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.MistralBaseURL, "/")
	}

	return &MistralClient{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         cfg.MistralModel,
		timeout:       cfg.Timeout,
		maxInputChars: cfg.MaxInputChars,
		logger:        logrus.StandardLogger(),
	}, nil
}

func (c *MistralClient) Name() string { return "mistral" }

func (c *MistralClient) Summarize(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		MaxTokens:   1024,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: summaryPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: truncate(text, c.maxInputChars),
			},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", errors.Wrapf(ErrBackendRejected, "mistral API status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", errors.Wrapf(ErrBackendUnavailable, "mistral API: %v", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrBackendRejected, "mistral API returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[len(resp.Choices)-1].Message.Content)
	if summary == "" {
		return "", errors.Wrap(ErrBackendRejected, "mistral API returned an empty summary")
	}

	c.logger.WithFields(logrus.Fields{
		"model":          c.model,
		"summary_length": len(summary),
	}).Debug("Generated summary")

	return summary, nil
}
