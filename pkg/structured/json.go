// Package structured — слой извлечения структурированного ответа модели.
//
// Конвейер: сырая строка ответа → StringToJSON → Schema.Parse → типизированный результат.
// Ошибки разбора (ErrMalformedJSON) и ошибки валидации (ErrSchemaValidation)
// различаются и обе прерывают конвейер без частичного результата.
package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedJSON — ответ модели не является JSON.
	ErrMalformedJSON = errors.New("malformed JSON")

	// ErrSchemaValidation — JSON не соответствует ожидаемой схеме.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// MalformedJSONError хранит исходный текст для диагностики.
type MalformedJSONError struct {
	Input string
	Err   error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("%s: %v (input: %q)", ErrMalformedJSON, e.Err, truncate(e.Input, 200))
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

func (e *MalformedJSONError) Is(target error) bool { return target == ErrMalformedJSON }

// Issue — одна проблема валидации.
type Issue struct {
	// Path — JSON pointer на значение внутри ответа ("" — корень)
	Path string `json:"path"`

	// Message — описание от валидатора
	Message string `json:"message"`
}

// ValidationError содержит список проблем, найденных валидатором.
type ValidationError struct {
	Issues []Issue
	Err    error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, is.Path+": "+is.Message)
	}
	return fmt.Sprintf("%s: %s", ErrSchemaValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrSchemaValidation }

// StringToJSON разбирает input как JSON-значение.
//
// Возвращает map[string]any, []any, string, float64, bool или nil.
// Любая ошибка (включая пустую строку и мусор после значения) → *MalformedJSONError.
func StringToJSON(input string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return nil, &MalformedJSONError{Input: input, Err: err}
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
