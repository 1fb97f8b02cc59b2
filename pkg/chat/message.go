// Package chat — модель данных чата: сообщения, вызовы инструментов, результат completion.
//
// Пакет не зависит от провайдера: адаптеры (pkg/llm/openai, pkg/llm/gemini)
// переводят эти типы в формат своего API.
package chat

import "fmt"

// Role — роль автора сообщения.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid проверяет что роль из известного набора.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall — запрос модели на вызов функции.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON строка
}

// AttachmentKind — вид вложения.
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment — вложение пользовательского сообщения.
//
// Пустой Kind считается картинкой. Картинке нужен URL,
// документу — Title (URL у документа опционален).
type Attachment struct {
	Kind  AttachmentKind `json:"type,omitempty"`
	Title string         `json:"title,omitempty"`

	// URL — http(s) ссылка или data URL
	URL string `json:"url,omitempty"`

	// Detail — подсказка провайдеру о качестве картинки ("low", "high", "auto")
	Detail string `json:"detail,omitempty"`
}

// Image создаёт вложение-картинку.
func Image(url, title string) Attachment {
	return Attachment{Kind: AttachmentImage, Title: title, URL: url}
}

// Document создаёт вложение-документ; url может быть пустым.
func Document(title, url string) Attachment {
	return Attachment{Kind: AttachmentDocument, Title: title, URL: url}
}

// IsImage — true для картинок, включая вложения без Kind.
func (a Attachment) IsImage() bool {
	return a.Kind == "" || a.Kind == AttachmentImage
}

// Validate проверяет обязательные поля по виду вложения.
func (a Attachment) Validate() error {
	switch a.Kind {
	case "", AttachmentImage:
		if a.URL == "" {
			return fmt.Errorf("%w: image attachment without url", ErrInvalidMessage)
		}
	case AttachmentDocument:
		if a.Title == "" {
			return fmt.Errorf("%w: document attachment without title", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown attachment type %q", ErrInvalidMessage, a.Kind)
	}
	return nil
}

// Message — одно сообщение диалога.
//
// Поля зависят от роли:
//   - ToolCalls — только у assistant;
//   - ToolCallID — обязателен у tool;
//   - Attachments — только у user.
type Message struct {
	Role        Role         `json:"role"`
	Name        string       `json:"name,omitempty"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolCallID  string       `json:"tool_call_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// System создаёт системное сообщение.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User создаёт сообщение пользователя, опционально с вложениями.
func User(content string, attachments ...Attachment) Message {
	return Message{Role: RoleUser, Content: content, Attachments: attachments}
}

// Assistant создаёт ответ модели.
func Assistant(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// Tool создаёт результат вызова инструмента.
func Tool(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Validate проверяет согласованность роли и полей.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}
	if len(m.ToolCalls) > 0 && m.Role != RoleAssistant {
		return fmt.Errorf("%w: tool calls on %s message", ErrInvalidMessage, m.Role)
	}
	if len(m.Attachments) > 0 && m.Role != RoleUser {
		return fmt.Errorf("%w: attachments on %s message", ErrInvalidMessage, m.Role)
	}
	if m.Role == RoleTool && m.ToolCallID == "" {
		return fmt.Errorf("%w: tool message without tool_call_id", ErrInvalidMessage)
	}
	if m.ToolCallID != "" && m.Role != RoleTool {
		return fmt.Errorf("%w: tool_call_id on %s message", ErrInvalidMessage, m.Role)
	}
	for i, att := range m.Attachments {
		if err := att.Validate(); err != nil {
			return fmt.Errorf("attachment #%d: %w", i, err)
		}
	}
	return nil
}

// ValidateAll проверяет все сообщения, ошибка указывает индекс.
func ValidateAll(messages []Message) error {
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("message #%d: %w", i, err)
		}
	}
	return nil
}
