package structured

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// InstructionPreamble предваряет JSON Schema в системном сообщении.
const InstructionPreamble = "You must return the result as a JSON object.\n" +
	"The result must strictly adhere to the following JSON schema:\n\n"

// InstructionBlock возвращает текст инструкции для модели: преамбула
// и схема, сериализованная с отступом в два пробела.
//
// HTML-символы не экранируются, чтобы модель видела схему как есть.
func InstructionBlock(schema Describer) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(schema.JSONSchema()); err != nil {
		return "", fmt.Errorf("serialize JSON schema: %w", err)
	}

	return InstructionPreamble + strings.TrimSuffix(buf.String(), "\n"), nil
}

// AppendInstructions дописывает блок инструкции для schema к уже отрендеренному тексту.
//
// Блок добавляется после рендеринга, поэтому "{{" внутри схемы
// никогда не трактуется как плейсхолдер.
func AppendInstructions(rendered string, schema Describer) (string, error) {
	block, err := InstructionBlock(schema)
	if err != nil {
		return "", err
	}
	return rendered + "\n" + block, nil
}
