package chat

// FinishReason — причина завершения генерации.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolCalls     FinishReason = "tool_calls"
)

// Completion — результат одного запроса к модели.
type Completion struct {
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`

	// Tokens — суммарное число токенов, nil если провайдер не сообщил
	Tokens *int `json:"tokens,omitempty"`
}

// ExpectRole возвращает ошибку если сообщение completion не от роли want.
func (c Completion) ExpectRole(want Role) error {
	if c.Message.Role != want {
		return &UnexpectedRoleError{Want: want, Got: c.Message.Role}
	}
	return nil
}
