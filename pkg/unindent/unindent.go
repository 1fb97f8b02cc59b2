// Package unindent нормализует многострочные шаблоны, записанные с отступами в исходном коде.
//
// Пример:
//
//	unindent.String(`
//	    Hello {{name}}!
//	    Bye.
//	`) == "Hello {{name}}!\nBye.\n"
package unindent

import "strings"

// String убирает общий отступ у всех строк кроме первой.
//
// Алгоритм:
//  1. Первая строка не трогается (она стоит на одной строке с открывающей кавычкой).
//     Если строка начинается с "\n", пустая первая строка отбрасывается.
//  2. Минимальный отступ (пробелы и табы) считается только по непустым строкам.
//  3. У каждой строки после первой срезается ровно этот отступ;
//     строки из одних пробелов короче отступа становятся пустыми.
func String(s string) string {
	skipFirst := strings.HasPrefix(s, "\n")
	lines := strings.Split(s, "\n")

	// 1. Считаем минимальный отступ по строкам после первой
	spaces := -1
	blankOnly := len(lines) > 1
	for _, line := range lines[1:] {
		n := indentWidth(line)
		if n < 0 {
			continue
		}
		blankOnly = false
		if spaces < 0 || n < spaces {
			spaces = n
		}
	}
	if spaces < 0 {
		spaces = 0
	}

	// 2. Собираем результат
	var b strings.Builder
	b.Grow(len(s))
	for i, line := range lines {
		if i > 1 || (i == 1 && !skipFirst) {
			b.WriteByte('\n')
		}
		switch {
		case i == 0:
			b.WriteString(line)
		case blankOnly:
			// Только пробельные строки после первой: срезать нечего, строки обнуляются
		case len(line) > spaces:
			b.WriteString(line[spaces:])
		}
	}

	return b.String()
}

// indentWidth возвращает длину ведущего отступа или -1 для строки из одних пробелов.
func indentWidth(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return i
		}
	}
	return -1
}
