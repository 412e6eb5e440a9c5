// Package openai extracts price constraints with an OpenAI-compatible chat model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain/search/query"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

const systemPrompt = `You extract price limits from marketplace search queries.
Reply with a JSON object {"min_price": number|null, "max_price": number|null}.
Use null when the query sets no such limit. Prices are plain numbers without currency.`

var (
	errEmptyResponse   = errors.New("empty completion")
	errInvalidResponse = errors.New("invalid completion")
)

// Fallback-reason label values.
const (
	reasonAPIError = "api_error"
	reasonTimeout  = "timeout"
	reasonEmpty    = "empty_response"
	reasonInvalid  = "invalid_response"
)

// Config holds the chat model settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Fallback query.Extractor
	Logger   *zap.Logger
}

// Extractor asks a chat model for the price bounds and falls back to the
// rule-based extractor on any failure. It never returns an error.
type Extractor struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	fallback query.Extractor
	logger   *zap.Logger
}

// NewExtractor creates an LLM-backed extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	fallback := cfg.Fallback
	if fallback == nil {
		fallback = query.Rules{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Extractor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		timeout:  timeout,
		fallback: fallback,
		logger:   logger,
	}
}

// Name identifies the extractor and model in cache keys.
func (e *Extractor) Name() string { return "llm:" + e.model }

// Extract implements query.Extractor.
func (e *Extractor) Extract(ctx context.Context, text string) query.PriceConstraint {
	c, err := e.complete(ctx, text)
	if err == nil {
		return c
	}

	reason := fallbackReason(err)
	metrics.ExtractorFallbackTotal.WithLabelValues(reason).Inc()
	e.logger.Warn("LLM extraction failed, using rules",
		zap.String("model", e.model),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return e.fallback.Extract(ctx, text)
}

func (e *Extractor) complete(ctx context.Context, text string) (query.PriceConstraint, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	metrics.ExtractorRequestDuration.WithLabelValues(e.model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractorRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return query.PriceConstraint{}, fmt.Errorf("chat completion: %w", err)
	}
	metrics.ExtractorRequestsTotal.WithLabelValues(e.model, "success").Inc()

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return query.PriceConstraint{}, errEmptyResponse
	}
	return parseBounds(resp.Choices[0].Message.Content)
}

// parseBounds decodes the model answer. Missing or null bounds are unbounded.
func parseBounds(content string) (query.PriceConstraint, error) {
	var answer struct {
		MinPrice *float64 `json:"min_price"`
		MaxPrice *float64 `json:"max_price"`
	}
	if err := json.Unmarshal([]byte(stripFence(content)), &answer); err != nil {
		return query.PriceConstraint{}, fmt.Errorf("%w: %w", errInvalidResponse, err)
	}

	c := query.Unconstrained()
	if answer.MinPrice != nil {
		if !validPrice(*answer.MinPrice) {
			return query.PriceConstraint{}, fmt.Errorf("%w: min_price %v", errInvalidResponse, *answer.MinPrice)
		}
		c.Min = *answer.MinPrice
	}
	if answer.MaxPrice != nil {
		if !validPrice(*answer.MaxPrice) {
			return query.PriceConstraint{}, fmt.Errorf("%w: max_price %v", errInvalidResponse, *answer.MaxPrice)
		}
		c.Max = *answer.MaxPrice
	}
	return c, nil
}

func validPrice(p float64) bool {
	return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, errEmptyResponse):
		return reasonEmpty
	case errors.Is(err, errInvalidResponse):
		return reasonInvalid
	default:
		return reasonAPIError
	}
}
