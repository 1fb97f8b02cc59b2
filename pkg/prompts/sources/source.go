// Package sources — реализации хранилищ промптов.
//
// Каждый источник возвращает *PromptData по идентификатору.
// Отсутствующий промпт → ошибка, оборачивающая ErrNotFound.
package sources

import (
	"errors"

	"github.com/ilkoid/poncho-prompt/pkg/config"
)

// ErrNotFound — источник не содержит промпт.
var ErrNotFound = errors.New("prompt not found in source")

// PromptData — сохранённое определение промпта.
//
// Формат YAML/JSON:
//
//	template: |
//	  You are a support assistant for {{product}}.
//	config:
//	  model: gpt-4o-mini
//	  temperature: 0.2
//	schema:            # опционально, JSON Schema ответа
//	  type: object
//	metadata:
//	  version: "1.0"
type PromptData struct {
	Template string             `yaml:"template" json:"template"`
	Config   config.ModelConfig `yaml:"config" json:"config"`
	Schema   map[string]any     `yaml:"schema" json:"schema,omitempty"`
	Metadata map[string]any     `yaml:"metadata" json:"metadata,omitempty"`
}

// Clone возвращает глубокую копию: изменения копии не видны в оригинале.
func (p *PromptData) Clone() *PromptData {
	if p == nil {
		return nil
	}
	out := &PromptData{
		Template: p.Template,
		Config:   p.Config.Merge(config.ModelConfig{}),
	}
	if p.Schema != nil {
		out.Schema = cloneValue(p.Schema).(map[string]any)
	}
	if p.Metadata != nil {
		out.Metadata = cloneValue(p.Metadata).(map[string]any)
	}
	return out
}

// cloneValue копирует вложенные map/slice значения, разобранные из YAML/JSON.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
