package prompt

import (
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/structured"
	"github.com/ilkoid/poncho-prompt/pkg/template"
)

// Instruction — шаблон системного сообщения и его конфиг.
// Создаётся один раз, переиспользуется с разными параметрами.
type Instruction struct {
	tpl    template.Template
	config config.ModelConfig

	// suffix — блок JSON-инструкции, дописывается после рендера
	suffix string
}

// NewInstruction сливает defaults и overrides в конфиг инструкции.
func NewInstruction(tpl template.Template, defaults config.ModelConfig, overrides ...config.ModelConfig) Instruction {
	if tpl == nil {
		tpl = template.Empty()
	}
	return Instruction{
		tpl:    tpl,
		config: config.Merge(append([]config.ModelConfig{defaults}, overrides...)...),
	}
}

// Template возвращает шаблон инструкции.
func (i Instruction) Template() template.Template { return i.tpl }

// Config возвращает копию конфига инструкции.
func (i Instruction) Config() config.ModelConfig { return config.Merge(i.config) }

// Render рендерит шаблон и дописывает JSON-инструкцию, если она есть.
func (i Instruction) Render(params template.Params) (string, error) {
	rendered, err := template.Render(i.tpl, params)
	if err != nil {
		return "", err
	}
	if i.suffix != "" {
		rendered += "\n" + i.suffix
	}
	return rendered, nil
}

// SchemaInstruction — инструкция с ожидаемой схемой ответа.
type SchemaInstruction[T any] struct {
	Instruction
	schema structured.Schema[T]
}

// NewSchemaInstruction строит инструкцию и заранее сериализует блок схемы.
func NewSchemaInstruction[T any](tpl template.Template, schema structured.Schema[T], defaults config.ModelConfig, overrides ...config.ModelConfig) (SchemaInstruction[T], error) {
	block, err := structured.InstructionBlock(schema)
	if err != nil {
		return SchemaInstruction[T]{}, err
	}

	instr := NewInstruction(tpl, defaults, overrides...)
	instr.suffix = block

	return SchemaInstruction[T]{Instruction: instr, schema: schema}, nil
}

// Schema возвращает схему ответа.
func (i SchemaInstruction[T]) Schema() structured.Schema[T] { return i.schema }
