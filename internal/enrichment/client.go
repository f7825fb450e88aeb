// Package enrichment turns significant catalog candidates into
// human-readable event records via an external text-generation service. It
// is a pass-through normalizer: it defaults what the service omits but never
// validates the scientific content of what it returns.
package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gwpulse/gwpulse/internal/config"
	"github.com/gwpulse/gwpulse/internal/models"
)

// Enricher produces an event record from a raw candidate, or a per-candidate
// failure. A failed candidate is skipped for the run and stays eligible for
// retry on a future run.
type Enricher interface {
	Enrich(ctx context.Context, ev models.Superevent) (*models.EventRecord, error)
}

var _ Enricher = (*OpenAIClient)(nil)

// OpenAIClient is the production enricher backed by the OpenAI chat API.
type OpenAIClient struct {
	client  *openai.Client
	config  config.EnrichConfig
	prompts *PromptTemplates
	logger  *slog.Logger
}

// NewOpenAIClient creates an enricher from the configured credentials and
// model parameters.
func NewOpenAIClient(cfg config.EnrichConfig, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:  openai.NewClient(cfg.APIKey),
		config:  cfg,
		prompts: NewPromptTemplates(),
		logger:  logger,
	}
}

// Enrich requests a structured description of the candidate and normalizes
// the response into an event record. Rate-limit responses are retried with
// backoff; any other failure is returned as a single per-candidate error.
func (c *OpenAIClient) Enrich(ctx context.Context, ev models.Superevent) (*models.EventRecord, error) {
	prompt := c.prompts.BuildEventPrompt(ev)

	const maxRetries = 3
	baseDelay := 1 * time.Second

	var resp openai.ChatCompletionResponse
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		apiCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		resp, err = c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Temperature: c.config.Temperature,
			MaxTokens:   c.config.MaxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: c.prompts.SystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
		cancel()

		if err == nil {
			break
		}
		if !isRateLimited(err) || attempt == maxRetries-1 {
			break
		}

		delay := baseDelay*time.Duration(1<<uint(attempt)) + time.Duration(rand.Intn(500))*time.Millisecond
		c.logger.Warn("rate limited, retrying with backoff",
			"superevent_id", ev.SupereventID,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("enrichment cancelled for %s: %w", ev.SupereventID, ctx.Err())
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, fmt.Errorf("text-generation call failed for %s: %w", ev.SupereventID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned for %s", ev.SupereventID)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty completion for %s (finish_reason: %s)",
			ev.SupereventID, resp.Choices[0].FinishReason)
	}

	parsed, err := ParseEnrichment(content)
	if err != nil {
		return nil, fmt.Errorf("unparseable completion for %s: %w", ev.SupereventID, err)
	}

	record := parsed.ToRecord(ev)
	return &record, nil
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(msg, "Rate limit")
}
