package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock — fenced блок кода из markdown.
type CodeBlock struct {
	Language string
	Content  string
}

// FencedCodeBlocks разбирает markdown через goldmark и возвращает все fenced блоки
// в порядке появления, в том числе блоки внутри пояснительного текста.
func FencedCodeBlocks(input string) []CodeBlock {
	src := []byte(input)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var blocks []CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		lines := fb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		blocks = append(blocks, CodeBlock{
			Language: strings.ToLower(string(fb.Language(src))),
			Content:  b.String(),
		})
		return ast.WalkSkipChildren, nil
	})

	return blocks
}

// ExtractFencedCode возвращает содержимое первого fenced блока с одним из языков langs.
// Блок без указания языка подходит всегда. Пустой langs — подходит любой блок.
func ExtractFencedCode(input string, langs ...string) (string, bool) {
	for _, block := range FencedCodeBlocks(input) {
		if block.Language == "" || len(langs) == 0 {
			return block.Content, true
		}
		for _, lang := range langs {
			if strings.EqualFold(block.Language, lang) {
				return block.Content, true
			}
		}
	}
	return "", false
}
