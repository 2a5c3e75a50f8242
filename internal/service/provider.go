package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"pairlens/internal/config"
)

// Generator is the generation-provider interface the orchestrator consumes.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ProviderError describes a failed generation call. Classification is
// structural: RateLimited is derived from the HTTP status and the API's
// error status field, never from message text.
type ProviderError struct {
	Status      int    // HTTP status, 0 for transport failures
	Code        string // API error status, e.g. RESOURCE_EXHAUSTED
	Message     string
	RateLimited bool
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

// GeminiProvider invokes the Gemini generateContent API and owns the
// retry/backoff policy for transient failures.
type GeminiProvider struct {
	config *config.AIConfig
	client *http.Client
	logger *log.Logger

	sleep func(time.Duration)
}

// NewGeminiProvider creates a provider client from the AI config.
func NewGeminiProvider(cfg *config.AIConfig, logger *log.Logger) *GeminiProvider {
	return &GeminiProvider{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Generate calls the provider with the assembled prompt and returns the raw
// text reply. Rate-limited calls are retried up to the configured budget
// with a linear backoff of baseDelay x attemptNumber; any other failure, or
// budget exhaustion, is returned immediately.
func (p *GeminiProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	if !p.config.IsEnabled() {
		return "", pipelineError(CategoryConfiguration, "generation provider API key is not configured", nil)
	}

	for attempt := 0; ; attempt++ {
		text, err := p.call(ctx, model, prompt)
		if err == nil {
			return text, nil
		}

		var provErr *ProviderError
		if !errors.As(err, &provErr) || !provErr.RateLimited {
			return "", pipelineError(CategoryProvider, "generation call failed", err)
		}
		if attempt >= p.config.MaxRetries {
			return "", pipelineError(CategoryProviderRateLimit, "rate limit retry budget exhausted", err)
		}

		delay := time.Duration(p.config.RetryBaseDelayMS*(attempt+1)) * time.Millisecond
		p.logger.Warn("provider rate limited, backing off",
			"model", model, "attempt", attempt+1, "delay", delay)
		p.sleep(delay)
	}
}

func (p *GeminiProvider) call(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Message: "marshal request: " + err.Error()}
	}

	url := fmt.Sprintf("%s?key=%s", p.config.ModelEndpoint(modelName), p.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", &ProviderError{Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Message: "api call: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Status: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Status  string `json:"status"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &errResp)

		return "", &ProviderError{
			Status:  resp.StatusCode,
			Code:    errResp.Error.Status,
			Message: errResp.Error.Message,
			RateLimited: resp.StatusCode == http.StatusTooManyRequests ||
				errResp.Error.Status == "RESOURCE_EXHAUSTED",
		}
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", &ProviderError{Status: resp.StatusCode, Message: "unmarshal response: " + err.Error()}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Status: resp.StatusCode, Message: "empty response from provider"}
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
