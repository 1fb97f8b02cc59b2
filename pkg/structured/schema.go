package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

// Draft07 — значение $schema в сгенерированных схемах.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Describer отдаёт сериализуемое описание ожидаемого JSON (JSON Schema).
type Describer interface {
	JSONSchema() any
}

// Schema — контракт схемы ответа: описание для промпта + проверка/приведение значения.
//
// Parse получает результат StringToJSON и возвращает типизированное значение
// или *ValidationError.
type Schema[T any] interface {
	Describer
	Parse(v any) (T, error)
}

// TypeSchema — схема, построенная рефлексией по Go типу T.
type TypeSchema[T any] struct {
	doc      *jsonschema.Schema
	compiled *validator.Schema
}

// For строит схему по типу T.
//
// Правила генерации (invopop/jsonschema):
//   - поля без omitempty обязательны;
//   - лишние свойства запрещены (additionalProperties: false);
//   - вложенные типы инлайнятся, без $ref/$defs;
//   - описание поля берётся из тега `jsonschema:"description=..."`.
func For[T any]() (*TypeSchema[T], error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	doc := r.Reflect(new(T))
	doc.Version = Draft07

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %T: %w", *new(T), err)
	}
	compiled, err := compile(raw)
	if err != nil {
		return nil, err
	}

	return &TypeSchema[T]{doc: doc, compiled: compiled}, nil
}

// MustFor как For, но паникует. Для package-level переменных.
func MustFor[T any]() *TypeSchema[T] {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// JSONSchema возвращает сгенерированный документ.
func (s *TypeSchema[T]) JSONSchema() any { return s.doc }

// Parse валидирует v и приводит его к T через JSON.
func (s *TypeSchema[T]) Parse(v any) (T, error) {
	return parseInto[T](s.compiled, v)
}

// RawSchema — схема из готового JSON Schema документа.
type RawSchema[T any] struct {
	doc      map[string]any
	compiled *validator.Schema
}

// Raw компилирует готовый документ (например, загруженный из YAML промпта).
func Raw[T any](doc map[string]any) (*RawSchema[T], error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema document: %w", err)
	}
	compiled, err := compile(raw)
	if err != nil {
		return nil, err
	}
	return &RawSchema[T]{doc: doc, compiled: compiled}, nil
}

// JSONSchema возвращает исходный документ.
func (s *RawSchema[T]) JSONSchema() any { return s.doc }

// Parse валидирует v и приводит его к T.
func (s *RawSchema[T]) Parse(v any) (T, error) {
	return parseInto[T](s.compiled, v)
}

type anySchema struct{}

// Any принимает любое JSON-значение.
func Any() Schema[any] { return anySchema{} }

func (anySchema) JSONSchema() any { return map[string]any{} }

func (anySchema) Parse(v any) (any, error) { return v, nil }

func compile(doc []byte) (*validator.Schema, error) {
	const url = "schema.json"

	c := validator.NewCompiler()
	c.Draft = validator.Draft7
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

func parseInto[T any](compiled *validator.Schema, v any) (T, error) {
	var out T

	if err := compiled.Validate(v); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			return out, &ValidationError{Issues: collectIssues(ve, nil), Err: err}
		}
		return out, &ValidationError{Issues: []Issue{{Message: err.Error()}}, Err: err}
	}

	// Для T = any приводить нечего
	if res, ok := v.(T); ok {
		return res, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return out, &ValidationError{Issues: []Issue{{Message: err.Error()}}, Err: err}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ValidationError{Issues: []Issue{{Message: err.Error()}}, Err: err}
	}
	return out, nil
}

// collectIssues раскладывает дерево ошибок валидатора в плоский список листьев.
func collectIssues(ve *validator.ValidationError, out []Issue) []Issue {
	if len(ve.Causes) == 0 {
		return append(out, Issue{Path: ve.InstanceLocation, Message: ve.Message})
	}
	for _, cause := range ve.Causes {
		out = collectIssues(cause, out)
	}
	return out
}
