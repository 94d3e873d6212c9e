// Package vlm wraps the vision-capable language model endpoint behind a
// small chat-completion interface. The endpoint is OpenAI-compatible; the
// base URL, key, and model name come from configuration.
package vlm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/NaserJamal/simple-ocr/internal/config"
)

// Request is one chat completion call: prompts plus an optional inline image.
type Request struct {
	System      string
	User        string
	ImagePNG    []byte
	MaxTokens   int
	Temperature float64
}

// Client issues chat completion requests against the vision model.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ModelClient implements Client on top of a langchaingo model.
type ModelClient struct {
	model   llms.Model
	timeout time.Duration
	retry   RetryConfig
}

// New creates a client for the configured OpenAI-compatible endpoint.
func New(cfg config.VLMConfig) (*ModelClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vlm: api key is not set")
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("vlm: creating model client: %w", err)
	}
	return NewWithModel(model, cfg), nil
}

// NewWithModel wraps an existing langchaingo model. Used by tests and by
// callers that construct the underlying model themselves. Retry fields left
// at zero in the config fall back to DefaultRetryConfig.
func NewWithModel(model llms.Model, cfg config.VLMConfig) *ModelClient {
	retry := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.BackoffInitSec > 0 {
		retry.InitialBackoff = time.Duration(cfg.BackoffInitSec * float64(time.Second))
	}
	if cfg.BackoffMaxSec > 0 {
		retry.MaxBackoff = time.Duration(cfg.BackoffMaxSec * float64(time.Second))
	}
	return &ModelClient{
		model:   model,
		timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		retry:   retry,
	}
}

// Complete sends the request and returns the model's text reply. Transient
// failures are retried with exponential backoff; each attempt is bounded by
// the configured per-call timeout.
func (c *ModelClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := buildMessages(req)

	var callOpts []llms.CallOption
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	callOpts = append(callOpts, llms.WithTemperature(req.Temperature))

	return c.retry.do(ctx, func() (string, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		resp, err := c.model.GenerateContent(callCtx, messages, callOpts...)
		if err != nil {
			return "", fmt.Errorf("vlm: completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("vlm: empty response from model")
		}
		return resp.Choices[0].Content, nil
	})
}

func buildMessages(req Request) []llms.MessageContent {
	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}

	parts := []llms.ContentPart{llms.TextPart(req.User)}
	if len(req.ImagePNG) > 0 {
		url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.ImagePNG)
		parts = append(parts, llms.ImageURLPart(url))
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	})
	return messages
}
