package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// Recorder записывает трейс запросов к модели и сохраняет в JSON файл.
//
// Потокобезопасен — обёрнутая функция может вызываться из разных горутин.
type Recorder struct {
	mu sync.Mutex

	config RecorderConfig
	log    DebugLog
	start  time.Time
	errors []string
}

// RecorderConfig конфигурация для создания Recorder.
type RecorderConfig struct {
	// LogsDir — директория для сохранения трейсов
	LogsDir string

	// PromptID — попадает в трейс как есть
	PromptID string

	// IncludeMessages — включать полный таймлайн сообщений
	IncludeMessages bool

	// MaxContentSize — максимальный размер content (превышение обрезается)
	// 0 означает без ограничений
	MaxContentSize int
}

// NewRecorder создает новый Recorder с заданной конфигурацией.
//
// Если LogsDir не существует, пытается создать её.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	now := time.Now()
	return &Recorder{
		config: cfg,
		log: DebugLog{
			RunID:     "debug_" + uuid.NewString(),
			Timestamp: now,
			PromptID:  cfg.PromptID,
			Calls:     make([]Call, 0),
		},
		start: now,
	}, nil
}

// Wrap возвращает ChatCompletionFunc, которая записывает каждый вызов next.
//
// Результат и ошибка next возвращаются без изменений.
func (r *Recorder) Wrap(next prompt.ChatCompletionFunc) prompt.ChatCompletionFunc {
	return func(ctx context.Context, messages []chat.Message, cfg config.ModelConfig) (chat.Completion, error) {
		started := time.Now()
		completion, err := next(ctx, messages, cfg)
		r.record(messages, cfg, completion, err, time.Since(started))
		return completion, err
	}
}

func (r *Recorder) record(messages []chat.Message, cfg config.ModelConfig, completion chat.Completion, callErr error, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := LLMRequest{
		Model:         cfg.Model,
		Config:        cfg,
		MessagesCount: len(messages),
	}
	if r.config.IncludeMessages {
		req.Messages = make([]MessageEntry, 0, len(messages))
		for _, msg := range messages {
			req.Messages = append(req.Messages, r.messageEntry(msg))
		}
	}

	resp := LLMResponse{Duration: elapsed.Milliseconds()}
	if callErr != nil {
		resp.Error = callErr.Error()
		r.errors = append(r.errors, fmt.Sprintf("call %d: %s", len(r.log.Calls)+1, callErr))
	} else {
		resp.Content = r.truncate(completion.Message.Content)
		resp.Role = string(completion.Message.Role)
		resp.ToolCalls = toolCalls(completion.Message.ToolCalls)
		resp.FinishReason = string(completion.FinishReason)
		resp.Tokens = completion.Tokens
	}

	r.log.Calls = append(r.log.Calls, Call{
		Number:   len(r.log.Calls) + 1,
		Request:  req,
		Response: resp,
	})

	utils.Debug("Completion recorded",
		"run_id", r.log.RunID,
		"model", cfg.Model,
		"duration_ms", resp.Duration,
		"error", resp.Error)
}

func (r *Recorder) messageEntry(msg chat.Message) MessageEntry {
	entry := MessageEntry{
		Role:       string(msg.Role),
		Name:       msg.Name,
		Content:    r.truncate(msg.Content),
		ToolCalls:  toolCalls(msg.ToolCalls),
		ToolCallID: msg.ToolCallID,
	}
	for _, att := range msg.Attachments {
		if att.IsImage() {
			entry.Images = append(entry.Images, r.truncate(att.URL))
		} else {
			entry.Documents = append(entry.Documents, att.Title)
		}
	}
	return entry
}

func toolCalls(calls []chat.ToolCall) []ToolCallInfo {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCallInfo, 0, len(calls))
	for _, tc := range calls {
		out = append(out, ToolCallInfo{ID: tc.ID, Name: tc.Name, Args: tc.Arguments})
	}
	return out
}

// truncate обрезает строку до MaxContentSize с индикатором.
func (r *Recorder) truncate(s string) string {
	limit := r.config.MaxContentSize
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "... (truncated)"
}

// Finalize завершает запись и сохраняет лог в файл.
//
// Возвращает путь к сохраненному файлу или ошибку.
func (r *Recorder) Finalize() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Duration = time.Since(r.start).Milliseconds()
	r.buildSummary()

	data, err := json.MarshalIndent(r.log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal debug log: %w", err)
	}

	filePath := r.getFilePath()
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write debug log: %w", err)
	}

	utils.Info("Debug log saved", "path", filePath, "calls", len(r.log.Calls))
	return filePath, nil
}

// buildSummary формирует агрегированную статистику.
func (r *Recorder) buildSummary() {
	summary := Summary{Errors: r.errors}
	for _, call := range r.log.Calls {
		summary.TotalLLMCalls++
		summary.TotalLLMDuration += call.Response.Duration
		if call.Response.Tokens != nil {
			summary.TotalTokens += *call.Response.Tokens
		}
	}
	r.log.Summary = summary
}

// getFilePath возвращает путь к файлу для сохранения.
func (r *Recorder) getFilePath() string {
	if r.config.LogsDir != "" {
		return filepath.Join(r.config.LogsDir, r.log.RunID+".json")
	}
	return r.log.RunID + ".json"
}

// GetRunID возвращает идентификатор текущей сессии.
func (r *Recorder) GetRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.RunID
}
