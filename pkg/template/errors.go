package template

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingPlaceholder — в Params нет значения для плейсхолдера.
	ErrMissingPlaceholder = errors.New("missing parameter")

	// ErrMissingTemplateArgs — шаблон с плейсхолдерами вызван без Params.
	ErrMissingTemplateArgs = errors.New("template has placeholders, so params are required")

	// ErrUnexpectedTemplateArgs — шаблону без плейсхолдеров переданы Params.
	ErrUnexpectedTemplateArgs = errors.New("template has no placeholders, params must be omitted")

	// ErrNilTemplate — вместо шаблона передан nil.
	ErrNilTemplate = errors.New("template is nil")
)

// MissingPlaceholderError содержит имя первого плейсхолдера без значения.
type MissingPlaceholderError struct {
	Name string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("missing parameter: %s", e.Name)
}

// Is позволяет проверять errors.Is(err, ErrMissingPlaceholder).
func (e *MissingPlaceholderError) Is(target error) bool {
	return target == ErrMissingPlaceholder
}

// MissingTemplateArgsError перечисляет плейсхолдеры, которые ждал шаблон.
type MissingTemplateArgsError struct {
	Placeholders []string
}

func (e *MissingTemplateArgsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingTemplateArgs, strings.Join(e.Placeholders, ", "))
}

func (e *MissingTemplateArgsError) Is(target error) bool {
	return target == ErrMissingTemplateArgs
}
