// Package ai holds the OpenAI backed collaborators: loose text matching,
// photo identification and route instructions.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"wayfinder-backend/internal/config"
	apperrors "wayfinder-backend/internal/errors"
	"wayfinder-backend/internal/infrastructure/observability"
)

// ChatAPI is the slice of the OpenAI client used here.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client runs chat completions behind a circuit breaker.
type Client struct {
	api     ChatAPI
	breaker *gobreaker.CircuitBreaker
	cfg     config.AI
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewOpenAIClient builds an OpenAI client from cfg. BaseURL overrides the
// API endpoint, which is how tests and compatible gateways are wired.
func NewOpenAIClient(cfg config.AI) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(oc)
}

// NewClient wraps api with the breaker and metrics.
func NewClient(api ChatAPI, cfg config.AI, breaker *gobreaker.CircuitBreaker, metrics *observability.Collector, logger *zap.Logger) *Client {
	return &Client{
		api:     api,
		breaker: breaker,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// complete sends req and returns the trimmed text of the first choice.
func (c *Client) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("no choices returned")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
	}
	c.metrics.ObserveAICall(operation, outcome, time.Since(start))

	if err != nil {
		c.logger.Warn("OpenAI call failed",
			zap.String("operation", operation),
			zap.String("model", req.Model),
			zap.Error(err),
		)
		return "", classify(err, operation)
	}

	reply := result.(string)
	c.logger.Debug("OpenAI call completed",
		zap.String("operation", operation),
		zap.String("model", req.Model),
		zap.Duration("duration", time.Since(start)),
	)
	return reply, nil
}

func classify(err error, operation string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(apperrors.CodeTimeout.String(), "AI request timed out").
			WithOperation(operation).
			WithCause(err).
			Build()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.NewError(apperrors.ErrorTypeUnavailable, apperrors.CodeAIUnavailable.String(), "AI service temporarily unavailable").
			WithOperation(operation).
			WithRetryable(true).
			WithCause(err).
			Build()
	default:
		return apperrors.External(apperrors.CodeExternalServiceError.String(), "AI request failed").
			WithOperation(operation).
			WithCause(err).
			Build()
	}
}

// cleanReply strips the quoting and punctuation models wrap answers in.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimRight(s, ".")
	return strings.TrimSpace(s)
}
