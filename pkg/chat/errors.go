package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedRole — completion пришёл не от той роли (обычно ждём assistant).
	ErrUnexpectedRole = errors.New("unexpected message role")

	// ErrNoCompletionChoices — провайдер вернул ответ без вариантов.
	ErrNoCompletionChoices = errors.New("no completion choices returned")

	// ErrInvalidMessage — поля сообщения не соответствуют его роли.
	ErrInvalidMessage = errors.New("invalid message")
)

// UnexpectedRoleError содержит ожидаемую и фактическую роль.
type UnexpectedRoleError struct {
	Want Role
	Got  Role
}

func (e *UnexpectedRoleError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", ErrUnexpectedRole, e.Want, e.Got)
}

func (e *UnexpectedRoleError) Is(target error) bool { return target == ErrUnexpectedRole }
