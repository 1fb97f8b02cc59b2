package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ilkoid/poncho-prompt/pkg/config"
)

// DefaultSource — встроенные (hardcoded) промпты.
//
// Fallback source когда внешние хранилища недоступны.
type DefaultSource struct {
	mu      sync.RWMutex
	prompts map[string]*PromptData
}

// NewDefaultSource создаёт пустой источник.
func NewDefaultSource() *DefaultSource {
	return &DefaultSource{
		prompts: make(map[string]*PromptData),
	}
}

// AddPrompt добавляет встроенный промпт.
func (s *DefaultSource) AddPrompt(id string, file *PromptData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[id] = file.Clone()
}

// Load возвращает встроенный промпт.
func (s *DefaultSource) Load(_ context.Context, promptID string) (*PromptData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.prompts[promptID]
	if !ok {
		return nil, fmt.Errorf("%w: default prompt '%s'", ErrNotFound, promptID)
	}
	return file.Clone(), nil
}

// List возвращает идентификаторы встроенных промптов, отсортированные.
func (s *DefaultSource) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.prompts))
	for id := range s.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// PopulateDefaults заполняет источник стандартными промптами.
func (s *DefaultSource) PopulateDefaults() {
	s.AddPrompt("summarize", &PromptData{
		Template: `Summarize the conversation so far in at most {{sentences}} sentences.
Keep names, numbers and decisions.`,
		Config:   config.ModelConfig{Temperature: config.Ptr(0.2)},
		Metadata: map[string]any{"source": "go-default", "version": "1.0"},
	})

	s.AddPrompt("detect_language", &PromptData{
		Template: "Detect the language of the last user message.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language":   map[string]any{"type": "string", "description": "ISO 639-1 code"},
				"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			},
			"required":             []any{"language", "confidence"},
			"additionalProperties": false,
		},
		Metadata: map[string]any{"source": "go-default", "version": "1.0"},
	})
}
