// Package llm — общий контракт адаптеров провайдеров.
//
// Адаптер переводит chat.Message и config.ModelConfig в формат своего API
// и возвращает chat.Completion. Метод Complete совпадает по сигнатуре
// с prompt.ChatCompletionFunc.
package llm

import (
	"context"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
)

// Provider — контракт для любого AI-сервиса.
type Provider interface {
	Complete(ctx context.Context, messages []chat.Message, cfg config.ModelConfig) (chat.Completion, error)
}

// Известные провайдеры.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)
