package prompts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// SourceRegistry — реестр источников промптов с fallback chain.
//
// Источники пробуются по порядку добавления. ErrNotFound переходит
// к следующему источнику, любая другая ошибка останавливает поиск.
type SourceRegistry struct {
	sources []PromptSource
}

// NewSourceRegistry создаёт новый реестр источников.
func NewSourceRegistry(sources ...PromptSource) *SourceRegistry {
	return &SourceRegistry{
		sources: append(make([]PromptSource, 0, len(sources)), sources...),
	}
}

// AddSource добавляет источник в fallback chain.
func (r *SourceRegistry) AddSource(source PromptSource) {
	r.sources = append(r.sources, source)
}

// Load загружает промпт из первого источника, который его содержит.
//
// Fallback Chain:
// 1. Пробует каждый источник по порядку
// 2. ErrNotFound → следующий источник
// 3. Другая ошибка (сеть, парсинг) → возвращается сразу
func (r *SourceRegistry) Load(ctx context.Context, promptID string) (*PromptFile, error) {
	if len(r.sources) == 0 {
		return nil, fmt.Errorf("no sources configured for prompt '%s'", promptID)
	}

	for i, source := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := source.Load(ctx, promptID)
		if err == nil {
			utils.Debug("Prompt loaded", "id", promptID, "source", i)
			return file, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}

	return nil, fmt.Errorf("%w: '%s' in %d sources", ErrNotFound, promptID, len(r.sources))
}

// HasSources проверяет, есть ли хотя бы один источник.
func (r *SourceRegistry) HasSources() bool {
	return len(r.sources) > 0
}

// List возвращает отсортированные идентификаторы промптов из всех
// источников, реализующих Lister. Дубликаты (затенённые промпты) схлопываются.
func (r *SourceRegistry) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for i, source := range r.sources {
		lister, ok := source.(Lister)
		if !ok {
			continue
		}
		names, err := lister.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		for _, id := range names {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
