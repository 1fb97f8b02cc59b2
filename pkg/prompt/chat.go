package prompt

import (
	"context"
	"time"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/structured"
	"github.com/ilkoid/poncho-prompt/pkg/template"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// ChatCompletionFunc — запрос к модели. Реализуется адаптерами провайдеров
// (openai.Client.Complete, gemini.Client.Complete) или фейками в тестах.
type ChatCompletionFunc func(ctx context.Context, messages []chat.Message, cfg config.ModelConfig) (chat.Completion, error)

// JoinStrategy объединяет системное сообщение с таймлайном вызывающего.
// Не должна изменять timeline.
type JoinStrategy func(system chat.Message, timeline []chat.Message) []chat.Message

// PrependSystem ставит системное сообщение перед таймлайном.
func PrependSystem(system chat.Message, timeline []chat.Message) []chat.Message {
	out := make([]chat.Message, 0, len(timeline)+1)
	out = append(out, system)
	return append(out, timeline...)
}

// AppendSystem ставит системное сообщение после таймлайна.
func AppendSystem(system chat.Message, timeline []chat.Message) []chat.Message {
	out := make([]chat.Message, 0, len(timeline)+1)
	out = append(out, timeline...)
	return append(out, system)
}

// Option настраивает Chat.
type Option func(*chatOptions)

type chatOptions struct {
	join    JoinStrategy
	lenient bool
}

// WithJoin задаёт стратегию объединения (по умолчанию PrependSystem).
func WithJoin(join JoinStrategy) Option {
	return func(o *chatOptions) {
		if join != nil {
			o.join = join
		}
	}
}

// WithLenientJSON включает structured.DecodeLenient для RequestJSON.
func WithLenientJSON() Option {
	return func(o *chatOptions) {
		o.lenient = true
	}
}

// Chat — промпт на основе Instruction.
type Chat struct {
	instr    Instruction
	complete ChatCompletionFunc
	opts     chatOptions
}

// New создаёт Chat. Для инструкций со схемой используйте NewJSON,
// чтобы получить RequestJSON.
func New(instr Instruction, complete ChatCompletionFunc, opts ...Option) *Chat {
	o := chatOptions{join: PrependSystem}
	for _, opt := range opts {
		opt(&o)
	}
	return &Chat{instr: instr, complete: complete, opts: o}
}

// Instruction возвращает инструкцию.
func (c *Chat) Instruction() Instruction { return c.instr }

// RequestCompletion рендерит инструкцию в системное сообщение, объединяет его
// с timeline и вызывает модель.
//
// Слои конфига: {response_format: natural} → конфиг инструкции → overrides.
func (c *Chat) RequestCompletion(ctx context.Context, timeline []chat.Message, params template.Params, overrides ...config.ModelConfig) (chat.Completion, error) {
	// 1. Рендер системного сообщения
	rendered, err := c.instr.Render(params)
	if err != nil {
		return chat.Completion{}, err
	}

	// 2. Сообщения и конфиг
	messages := c.opts.join(chat.System(rendered), timeline)
	if err := chat.ValidateAll(messages); err != nil {
		return chat.Completion{}, err
	}

	layers := make([]config.ModelConfig, 0, len(overrides)+2)
	layers = append(layers, config.ModelConfig{ResponseFormat: config.FormatNatural}, c.instr.config)
	layers = append(layers, overrides...)
	cfg := config.Merge(layers...)

	utils.Debug("Chat completion requested",
		"model", cfg.Model,
		"messages", len(messages),
		"format", cfg.ResponseFormat,
	)

	// 3. Вызов модели
	start := time.Now()
	completion, err := c.complete(ctx, messages, cfg)
	if err != nil {
		utils.Error("Chat completion failed", "model", cfg.Model, "error", err, "duration", time.Since(start))
		return chat.Completion{}, err
	}

	utils.Debug("Chat completion received",
		"model", cfg.Model,
		"finish_reason", completion.FinishReason,
		"duration", time.Since(start),
	)
	return completion, nil
}

// RequestContent возвращает текст ответа; ответ должен быть от assistant.
func (c *Chat) RequestContent(ctx context.Context, timeline []chat.Message, params template.Params, overrides ...config.ModelConfig) (string, error) {
	completion, err := c.RequestCompletion(ctx, timeline, params, overrides...)
	if err != nil {
		return "", err
	}
	if err := completion.ExpectRole(chat.RoleAssistant); err != nil {
		return "", err
	}
	return completion.Message.Content, nil
}

// JSONChat — Chat для инструкции со схемой, дополнительно даёт RequestJSON.
type JSONChat[T any] struct {
	*Chat
	schema structured.Schema[T]
}

// NewJSON создаёт JSONChat.
func NewJSON[T any](instr SchemaInstruction[T], complete ChatCompletionFunc, opts ...Option) *JSONChat[T] {
	return &JSONChat[T]{
		Chat:   New(instr.Instruction, complete, opts...),
		schema: instr.schema,
	}
}

// RequestJSON запрашивает ответ в формате JSON и декодирует его по схеме.
// response_format принудительно "json", поверх всех overrides.
func (c *JSONChat[T]) RequestJSON(ctx context.Context, timeline []chat.Message, params template.Params, overrides ...config.ModelConfig) (T, error) {
	var zero T

	layers := append(append([]config.ModelConfig(nil), overrides...), config.ModelConfig{ResponseFormat: config.FormatJSON})
	content, err := c.RequestContent(ctx, timeline, params, layers...)
	if err != nil {
		return zero, err
	}

	var out T
	if c.opts.lenient {
		out, err = structured.DecodeLenient(content, c.schema)
	} else {
		out, err = structured.Decode(content, c.schema)
	}
	if err != nil {
		return zero, err
	}
	return out, nil
}

// ContentRequester — общий интерфейс Chat и JSONChat.
type ContentRequester interface {
	RequestCompletion(ctx context.Context, timeline []chat.Message, params template.Params, overrides ...config.ModelConfig) (chat.Completion, error)
	RequestContent(ctx context.Context, timeline []chat.Message, params template.Params, overrides ...config.ModelConfig) (string, error)
}

// JSONRequester есть только у промптов со схемой.
type JSONRequester[T any] interface {
	ContentRequester
	RequestJSON(ctx context.Context, timeline []chat.Message, params template.Params, overrides ...config.ModelConfig) (T, error)
}

var (
	_ ContentRequester   = (*Chat)(nil)
	_ JSONRequester[any] = (*JSONChat[any])(nil)
)
