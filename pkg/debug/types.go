// Package debug записывает трейсы запросов к модели в JSON файлы.
//
// Трейс содержит каждый вызов ChatCompletionFunc: итоговый конфиг,
// полный таймлайн сообщений, ответ модели, длительность и ошибку.
package debug

import (
	"time"

	"github.com/ilkoid/poncho-prompt/pkg/config"
)

// DebugLog — полный трейс одного запуска.
type DebugLog struct {
	// RunID — уникальный идентификатор запуска (используется в имени файла)
	RunID string `json:"run_id"`

	// Timestamp — время начала записи
	Timestamp time.Time `json:"timestamp"`

	// PromptID — идентификатор загруженного промпта, если есть
	PromptID string `json:"prompt_id,omitempty"`

	// Duration — общая длительность в миллисекундах
	Duration int64 `json:"duration_ms"`

	// Calls — вызовы модели в порядке выполнения
	Calls []Call `json:"calls"`

	Summary Summary `json:"summary"`
}

// Call — один запрос к модели.
type Call struct {
	// Number — номер вызова (начиная с 1)
	Number int `json:"call"`

	Request  LLMRequest  `json:"llm_request"`
	Response LLMResponse `json:"llm_response"`
}

// LLMRequest содержит информацию о запросе к LLM.
type LLMRequest struct {
	Model string `json:"model"`

	// Config — итоговый конфиг после объединения слоёв
	Config config.ModelConfig `json:"config"`

	// MessagesCount — количество сообщений в запросе
	MessagesCount int `json:"messages_count"`

	// Messages — полная история сообщений
	Messages []MessageEntry `json:"messages,omitempty"`
}

// LLMResponse содержит ответ от LLM.
type LLMResponse struct {
	Content      string         `json:"content,omitempty"`
	Role         string         `json:"role,omitempty"`
	ToolCalls    []ToolCallInfo `json:"tool_calls,omitempty"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Tokens       *int           `json:"tokens,omitempty"`

	// Duration — длительность генерации в миллисекундах
	Duration int64 `json:"duration_ms"`

	Error string `json:"error,omitempty"`
}

// ToolCallInfo описывает вызов инструмента от LLM.
type ToolCallInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"`
}

// MessageEntry — одно сообщение таймлайна.
type MessageEntry struct {
	Role       string         `json:"role"`
	Name       string         `json:"name,omitempty"`
	Content    string         `json:"content"`
	ToolCalls  []ToolCallInfo `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Images     []string       `json:"images,omitempty"`
	Documents  []string       `json:"documents,omitempty"`
}

// Summary содержит агрегированную статистику.
type Summary struct {
	TotalLLMCalls    int   `json:"total_llm_calls"`
	TotalLLMDuration int64 `json:"total_llm_duration_ms"`

	// TotalTokens — сумма по вызовам, для которых провайдер сообщил токены
	TotalTokens int `json:"total_tokens"`

	Errors []string `json:"errors,omitempty"`
}
