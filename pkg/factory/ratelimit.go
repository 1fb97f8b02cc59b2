package factory

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
)

// NewLimiter создаёт limiter из лимита в запросах/минуту.
// rpm <= 0 — без ограничений.
func NewLimiter(rpm int, burst int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	// rpm в запросах/минуту → rate.Limit в запросах/секунду
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// WithRateLimit ограничивает частоту вызовов next.
//
// Ожидание уважает ctx: отмена во время ожидания возвращает ошибку без вызова next.
func WithRateLimit(next prompt.ChatCompletionFunc, limiter *rate.Limiter) prompt.ChatCompletionFunc {
	return func(ctx context.Context, messages []chat.Message, cfg config.ModelConfig) (chat.Completion, error) {
		if err := limiter.Wait(ctx); err != nil {
			return chat.Completion{}, fmt.Errorf("rate limiter wait: %w", err)
		}
		return next(ctx, messages, cfg)
	}
}
