// Package factory создаёт адаптеры провайдеров по конфигурации модели.
package factory

import (
	"context"
	"fmt"

	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/llm"
	"github.com/ilkoid/poncho-prompt/pkg/llm/gemini"
	"github.com/ilkoid/poncho-prompt/pkg/llm/openai"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
)

// NewLLMProvider создает провайдера на основе конфигурации модели
func NewLLMProvider(ctx context.Context, modelDef config.ModelDef) (llm.Provider, error) {
	switch modelDef.Provider {
	case llm.ProviderOpenAI, "zai", "deepseek":
		return openai.NewClient(modelDef), nil

	case llm.ProviderGemini:
		return gemini.NewClient(ctx, modelDef)

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}
}

// NewChatCompletion возвращает функцию completion для Instruction-промптов.
func NewChatCompletion(ctx context.Context, modelDef config.ModelDef) (prompt.ChatCompletionFunc, error) {
	provider, err := NewLLMProvider(ctx, modelDef)
	if err != nil {
		return nil, err
	}
	return provider.Complete, nil
}
