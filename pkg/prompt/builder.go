package prompt

import (
	"context"
	"time"

	"github.com/ilkoid/poncho-prompt/pkg/template"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// Mergeable — конфиг, который умеет накладывать на себя следующий слой.
// Merge не должен изменять получатель или аргумент.
type Mergeable[C any] interface {
	Merge(override C) C
}

// Builder хранит дефолтный конфиг для семейства промптов.
type Builder[C Mergeable[C], X any] struct {
	defaults C
}

// NewBuilder создаёт билдер с явным дефолтным конфигом.
func NewBuilder[C Mergeable[C], X any](defaults C) *Builder[C, X] {
	var empty C
	return &Builder[C, X]{defaults: defaults.Merge(empty)}
}

// Prompt — шаблон + функция инференса + дефолты. Неизменяем после Define,
// безопасен для конкурентных вызовов Request.
type Prompt[C Mergeable[C], X, O any] struct {
	tpl      template.Template
	infer    Inference[C, X, O]
	defaults C
}

// Args — аргументы одного вызова.
type Args[C, X any] struct {
	// TemplateArgs — обязательны если в шаблоне есть плейсхолдеры, запрещены иначе
	TemplateArgs template.Params

	// Request — передаётся в функцию инференса без изменений
	Request X

	// Config — опциональный слой поверх дефолтов
	Config *C
}

// Define строит шаблон из source и связывает его с функцией инференса.
// promptDefaults накладываются на дефолты билдера по порядку.
func Define[C Mergeable[C], X, O any](b *Builder[C, X], source string, infer Inference[C, X, O], promptDefaults ...C) *Prompt[C, X, O] {
	// Merge с пустым слоем даёт копию: Prompt не делит указатели с билдером
	var empty C
	defaults := b.defaults.Merge(empty)
	for _, layer := range promptDefaults {
		defaults = defaults.Merge(layer)
	}

	return &Prompt[C, X, O]{
		tpl:      template.Build(source),
		infer:    infer,
		defaults: defaults,
	}
}

// Template возвращает построенный шаблон.
func (p *Prompt[C, X, O]) Template() template.Template { return p.tpl }

// Request рендерит шаблон, сливает конфиг и вызывает функцию инференса.
// Результат и ошибка инференса возвращаются без изменений.
func (p *Prompt[C, X, O]) Request(ctx context.Context, args Args[C, X]) (O, error) {
	var zero O

	// 1. Рендер (проверка наличия/отсутствия аргументов внутри)
	rendered, err := template.Render(p.tpl, args.TemplateArgs)
	if err != nil {
		return zero, err
	}

	// 2. Конфиг: билдер ⊕ промпт ⊕ вызов. Всегда свежая копия,
	// инференс не может изменить дефолты промпта
	var override C
	if args.Config != nil {
		override = *args.Config
	}
	cfg := p.defaults.Merge(override)

	// 3. Инференс
	start := time.Now()
	out, err := p.infer.Infer(ctx, Input[C, X]{
		RenderedTemplate: rendered,
		Request:          args.Request,
		Config:           cfg,
	})
	if err != nil {
		utils.Error("Prompt inference failed", "error", err, "duration", time.Since(start))
		return out, err
	}

	utils.Debug("Prompt inference done",
		"placeholders", len(p.tpl.Placeholders()),
		"rendered_len", len(rendered),
		"duration", time.Since(start),
	)
	return out, nil
}
