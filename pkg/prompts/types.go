package prompts

import (
	"errors"

	"github.com/ilkoid/poncho-prompt/pkg/prompts/sources"
)

// PromptFile — содержимое загруженного промпта.
//
// Используется всеми реализациями PromptSource интерфейса.
type PromptFile = sources.PromptData

// ErrNotFound возвращается когда источник не содержит промпт.
var ErrNotFound = sources.ErrNotFound

// ErrNoSchema — промпт загружен, но не содержит схемы ответа.
var ErrNoSchema = errors.New("prompt has no response schema")
