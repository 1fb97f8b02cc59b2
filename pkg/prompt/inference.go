// Package prompt — движок композиции промптов.
//
// Две формы:
//   - builder-first: NewBuilder + Define собирают шаблон и произвольную функцию
//     инференса в один вызываемый Prompt;
//   - instruction-based: Instruction (шаблон + конфиг + опциональная схема)
//     и ChatCompletionFunc дают RequestCompletion / RequestContent / RequestJSON.
//
// Конвейер одного вызова строго последовательный:
// render → merge config → infer → (decode JSON).
package prompt

import (
	"context"
	"time"

	"github.com/ilkoid/poncho-prompt/pkg/structured"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// Input — то, что получает функция инференса.
type Input[C, X any] struct {
	// RenderedTemplate — шаблон после подстановки параметров
	RenderedTemplate string

	// Request — непрозрачные данные вызова, передаются как есть
	Request X

	// Config — итоговый конфиг после слияния всех слоёв
	Config C
}

// Inference — функция инференса: отрендеренный промпт → результат O.
//
// Движок не интерпретирует O, только возвращает его вызывающему.
type Inference[C, X, O any] interface {
	Infer(ctx context.Context, in Input[C, X]) (O, error)
}

// InferenceFunc адаптирует обычную функцию к Inference.
type InferenceFunc[C, X, O any] func(ctx context.Context, in Input[C, X]) (O, error)

// Infer вызывает f.
func (f InferenceFunc[C, X, O]) Infer(ctx context.Context, in Input[C, X]) (O, error) {
	return f(ctx, in)
}

// JSONOption настраивает обёртку JSON.
type JSONOption[C any] func(*jsonOptions[C])

type jsonOptions[C any] struct {
	adjust  func(C) C
	lenient bool
}

// WithConfig меняет конфиг перед вызовом внутренней функции
// (например, принудительно включает JSON формат ответа).
func WithConfig[C any](adjust func(C) C) JSONOption[C] {
	return func(o *jsonOptions[C]) {
		o.adjust = adjust
	}
}

// Lenient включает structured.DecodeLenient вместо строгого Decode.
func Lenient[C any]() JSONOption[C] {
	return func(o *jsonOptions[C]) {
		o.lenient = true
	}
}

// JSON оборачивает строковую функцию инференса: дописывает к промпту
// инструкцию со схемой, вызывает infer и декодирует ответ по схеме.
//
// Ошибки: structured.ErrMalformedJSON, structured.ErrSchemaValidation
// или ошибка infer без изменений.
func JSON[C, X, T any](schema structured.Schema[T], infer Inference[C, X, string], opts ...JSONOption[C]) Inference[C, X, T] {
	var o jsonOptions[C]
	for _, opt := range opts {
		opt(&o)
	}

	// Блок детерминирован для схемы, считаем один раз
	block, blockErr := structured.InstructionBlock(schema)

	return InferenceFunc[C, X, T](func(ctx context.Context, in Input[C, X]) (T, error) {
		var zero T
		if blockErr != nil {
			return zero, blockErr
		}

		in.RenderedTemplate = in.RenderedTemplate + "\n" + block
		if o.adjust != nil {
			in.Config = o.adjust(in.Config)
		}

		raw, err := infer.Infer(ctx, in)
		if err != nil {
			return zero, err
		}

		start := time.Now()
		var out T
		if o.lenient {
			out, err = structured.DecodeLenient(raw, schema)
		} else {
			out, err = structured.Decode(raw, schema)
		}
		if err != nil {
			utils.Warn("JSON decode failed", "error", err, "lenient", o.lenient)
			return zero, err
		}
		utils.Debug("JSON decoded", "duration", time.Since(start))
		return out, nil
	})
}
