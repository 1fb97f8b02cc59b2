package structured

import (
	"encoding/json"
	"errors"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// Decode — строгий конвейер: StringToJSON, затем schema.Parse.
func Decode[T any](raw string, schema Schema[T]) (T, error) {
	v, err := StringToJSON(raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return schema.Parse(v)
}

// DecodeLenient пробует восстановить JSON из "грязного" ответа модели.
//
// Кандидаты проверяются по порядку:
//  1. строка как есть;
//  2. первый fenced блок ```json (goldmark);
//  3. первый сбалансированный {...} в тексте (utils.ExtractJSON);
//  4. результат json-repair;
//  5. HJSON (комментарии, запятые в конце, ключи без кавычек).
//
// Возвращается первый кандидат, прошедший схему. Если ни один кандидат
// не разобрался как JSON — *MalformedJSONError по исходной строке.
// Если разобрался, но не прошёл схему — ошибка валидации первого такого кандидата.
func DecodeLenient[T any](raw string, schema Schema[T]) (T, error) {
	var (
		zero          T
		validationErr error
	)

	for _, candidate := range lenientCandidates(raw) {
		v, err := StringToJSON(candidate)
		if err != nil {
			continue
		}
		out, err := schema.Parse(v)
		if err == nil {
			return out, nil
		}
		if validationErr == nil {
			validationErr = err
		}
	}

	if validationErr != nil {
		return zero, validationErr
	}

	_, err := StringToJSON(raw)
	if err == nil {
		err = &MalformedJSONError{Input: raw, Err: errors.New("no JSON candidate found")}
	}
	return zero, err
}

func lenientCandidates(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	add(raw)

	if block, ok := utils.ExtractFencedCode(raw, "json", "javascript", "js"); ok {
		add(block)
	}

	add(utils.ExtractJSON(raw))

	if repaired, err := jsonrepair.RepairJSON(raw); err == nil {
		add(repaired)
	}

	var loose any
	if err := hjson.Unmarshal([]byte(raw), &loose); err == nil {
		if b, err := json.Marshal(loose); err == nil {
			add(string(b))
		}
	}

	return out
}
