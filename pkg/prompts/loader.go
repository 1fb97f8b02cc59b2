package prompts

import (
	"context"
	"fmt"

	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
	"github.com/ilkoid/poncho-prompt/pkg/structured"
	"github.com/ilkoid/poncho-prompt/pkg/template"
)

// Loader — всё, из чего можно загрузить промпт (SourceRegistry или одиночный источник).
type Loader = PromptSource

// LoadInstruction загружает промпт и собирает из него инструкцию.
//
// Слои конфигурации: defaults → config из промпта.
func LoadInstruction(ctx context.Context, src Loader, promptID string, defaults config.ModelConfig) (prompt.Instruction, error) {
	file, err := src.Load(ctx, promptID)
	if err != nil {
		return prompt.Instruction{}, fmt.Errorf("load prompt '%s': %w", promptID, err)
	}
	return prompt.NewInstruction(template.Build(file.Template), defaults, file.Config), nil
}

// LoadSchemaInstruction загружает промпт со схемой ответа.
//
// Схема берётся из поля schema как есть; ответ разбирается в any.
func LoadSchemaInstruction(ctx context.Context, src Loader, promptID string, defaults config.ModelConfig) (prompt.SchemaInstruction[any], error) {
	file, err := src.Load(ctx, promptID)
	if err != nil {
		return prompt.SchemaInstruction[any]{}, fmt.Errorf("load prompt '%s': %w", promptID, err)
	}
	if len(file.Schema) == 0 {
		return prompt.SchemaInstruction[any]{}, fmt.Errorf("%w: '%s'", ErrNoSchema, promptID)
	}

	schema, err := structured.Raw[any](file.Schema)
	if err != nil {
		return prompt.SchemaInstruction[any]{}, fmt.Errorf("prompt '%s': %w", promptID, err)
	}

	return prompt.NewSchemaInstruction[any](template.Build(file.Template), schema, defaults, file.Config)
}
