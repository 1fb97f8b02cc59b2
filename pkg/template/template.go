// Package template реализует шаблоны промптов с плейсхолдерами вида {{name}}.
//
// Шаблон — неизменяемое значение одного из двух видов:
//   - *Static — без плейсхолдеров, рендерится без параметров;
//   - *Parameterized — с плейсхолдерами, рендер требует Params.
//
// Вид определяется при Build и задаёт сигнатуру Render, поэтому вызов
// Render с лишними/отсутствующими параметрами ловится компилятором.
// Для динамических вызовов (из prompt, из загруженных файлов) есть
// свободная функция Render, которая делает ту же проверку в runtime.
package template

import (
	"regexp"
	"strings"

	"github.com/ilkoid/poncho-prompt/pkg/unindent"
)

// placeholderRe находит {{identifier}}, identifier = один или больше word-символов.
var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Params — значения для подстановки: имя плейсхолдера → текст.
//
// nil означает "параметры не переданы" и отличается от пустого map.
type Params map[string]string

// Template — общий интерфейс обоих видов шаблона.
type Template interface {
	// Text возвращает нормализованный (unindent) текст шаблона.
	Text() string

	// Placeholders возвращает уникальные имена плейсхолдеров в порядке первого появления.
	Placeholders() []string

	sealed()
}

// Static — шаблон без плейсхолдеров.
type Static struct {
	text string
}

// Parameterized — шаблон с хотя бы одним плейсхолдером.
type Parameterized struct {
	text  string
	names []string
}

// Build строит шаблон из исходного текста.
//
// Текст проходит через unindent, затем из него извлекается упорядоченное
// множество плейсхолдеров. Незакрытые "{{" плейсхолдерами не считаются.
func Build(source string) Template {
	return build(unindent.String(source))
}

// Empty возвращает пустой шаблон без плейсхолдеров.
func Empty() *Static {
	return &Static{}
}

func build(text string) Template {
	names := extract(text)
	if len(names) == 0 {
		return &Static{text: text}
	}
	return &Parameterized{text: text, names: names}
}

// extract возвращает уникальные имена в порядке первого появления.
func extract(text string) []string {
	matches := placeholderRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// Text возвращает текст шаблона.
func (s *Static) Text() string { return s.text }

// Placeholders всегда пуст для Static.
func (s *Static) Placeholders() []string { return nil }

// Render возвращает текст как есть.
func (s *Static) Render() string { return s.text }

func (s *Static) sealed() {}

// Text возвращает текст шаблона (с плейсхолдерами).
func (p *Parameterized) Text() string { return p.text }

// Placeholders возвращает копию списка имён.
func (p *Parameterized) Placeholders() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Render подставляет params за один проход слева направо.
//
// Первый плейсхолдер без значения в params прерывает рендер с
// *MissingPlaceholderError. Лишние ключи в params игнорируются.
func (p *Parameterized) Render(params Params) (string, error) {
	var b strings.Builder
	b.Grow(len(p.text))

	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(p.text, -1) {
		name := p.text[loc[2]:loc[3]]
		value, ok := params[name]
		if !ok {
			return "", &MissingPlaceholderError{Name: name}
		}
		b.WriteString(p.text[last:loc[0]])
		b.WriteString(value)
		last = loc[1]
	}
	b.WriteString(p.text[last:])

	return b.String(), nil
}

func (p *Parameterized) sealed() {}

// Render рендерит шаблон любого вида с runtime-проверкой параметров.
//
//   - Parameterized + nil params → ErrMissingTemplateArgs
//   - Static + не-nil params → ErrUnexpectedTemplateArgs
func Render(t Template, params Params) (string, error) {
	switch tpl := t.(type) {
	case *Static:
		if params != nil {
			return "", ErrUnexpectedTemplateArgs
		}
		return tpl.Render(), nil
	case *Parameterized:
		if params == nil {
			return "", &MissingTemplateArgsError{Placeholders: tpl.Placeholders()}
		}
		return tpl.Render(params)
	default:
		// Только пакет template реализует Template (sealed), сюда попадает лишь nil
		return "", ErrNilTemplate
	}
}

// Combine склеивает тексты шаблонов через "\n" в порядке аргументов.
//
// Плейсхолдеры пересчитываются по итоговому тексту, одинаковые имена
// из разных шаблонов схлопываются в одно.
func Combine(templates ...Template) Template {
	texts := make([]string, 0, len(templates))
	for _, t := range templates {
		if t == nil {
			continue
		}
		texts = append(texts, t.Text())
	}
	return build(strings.Join(texts, "\n"))
}
