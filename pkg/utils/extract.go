// Package utils — общие помощники: файловый логгер, graceful shutdown,
// извлечение JSON и кода из ответов LLM, обработка изображений.
package utils

// ExtractJSON находит первое сбалансированное JSON значение-контейнер
// ({...} или [...]) в тексте.
//
// LLM часто окружает JSON пояснениями: "Вот ответ: {...} Надеюсь, помог".
// Скобки внутри строковых литералов не учитываются. Если закрывающая
// скобка не найдена, возвращается хвост от открывающей (его может
// починить json-repair). Пустая строка — контейнер не найден.
//
// ВНИМАНИЕ: Не валидирует JSON, только извлекает его по эвристикам.
func ExtractJSON(s string) string {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return ""
	}

	stack := make([]byte, 0, 8)
	inString, escaped := false, false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return s[start:i]
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1]
			}
		}
	}

	return s[start:]
}
