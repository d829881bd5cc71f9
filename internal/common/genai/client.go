// Package genai is the text generation capability behind the assistant and
// cover letter workers.
package genai

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/common/errors"
	commonhttp "rental-readiness-workers/internal/common/http"
)

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	http        *commonhttp.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

func NewClient(cfg config.GenAIConfig) *Client {
	return &Client{
		http:        commonhttp.NewClient(0, cfg.MaxRetries),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// GenerateText returns TEXT_GENERATION_TIMEOUT when the call runs past its
// deadline and TEXT_GENERATION_UNAVAILABLE for every other failure.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var resp generateResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/api/ai/generate", headers, generateRequest{
		Prompt:      prompt,
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}, &resp)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.NewTextGenerationTimeoutError()
		}
		return "", errors.NewTextGenerationUnavailableError(err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.NewTextGenerationUnavailableError(stderrors.New("empty completion"))
	}
	return text, nil
}
