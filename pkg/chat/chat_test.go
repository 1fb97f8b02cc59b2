package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "system", msg: System("be brief")},
		{name: "user with image", msg: User("what is it?", Attachment{URL: "https://x/img.png"})},
		{name: "assistant with tool call", msg: Assistant("", ToolCall{ID: "1", Name: "lookup", Arguments: "{}"})},
		{name: "tool result", msg: Tool("1", `{"ok":true}`)},
		{name: "unknown role", msg: Message{Role: "robot"}, wantErr: true},
		{name: "tool without id", msg: Message{Role: RoleTool, Content: "x"}, wantErr: true},
		{name: "tool calls on user", msg: Message{Role: RoleUser, ToolCalls: []ToolCall{{ID: "1"}}}, wantErr: true},
		{name: "attachments on assistant", msg: Message{Role: RoleAssistant, Attachments: []Attachment{{URL: "u"}}}, wantErr: true},
		{name: "tool id on user", msg: Message{Role: RoleUser, ToolCallID: "1"}, wantErr: true},
		{name: "user with titled image", msg: User("x", Image("https://x/img.png", "label"))},
		{name: "user with document", msg: User("summarize", Document("contract.pdf", ""))},
		{name: "image without url", msg: User("x", Image("", "label")), wantErr: true},
		{name: "document without title", msg: User("x", Document("", "https://x/a.pdf")), wantErr: true},
		{name: "unknown attachment type", msg: User("x", Attachment{Kind: "video", URL: "u"}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateAll_ReportsIndex(t *testing.T) {
	err := ValidateAll([]Message{System("s"), User("u"), {Role: RoleTool}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message #2")
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestCompletion_ExpectRole(t *testing.T) {
	c := Completion{Message: User("hi"), FinishReason: FinishStop}

	err := c.ExpectRole(RoleAssistant)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedRole)

	var roleErr *UnexpectedRoleError
	require.True(t, errors.As(err, &roleErr))
	assert.Equal(t, RoleAssistant, roleErr.Want)
	assert.Equal(t, RoleUser, roleErr.Got)

	assert.NoError(t, Completion{Message: Assistant("ok")}.ExpectRole(RoleAssistant))
}

func TestAttachment_IsImage(t *testing.T) {
	assert.True(t, Attachment{URL: "u"}.IsImage())
	assert.True(t, Image("u", "").IsImage())
	assert.False(t, Document("spec", "").IsImage())
}

func TestValidate_ReportsAttachmentIndex(t *testing.T) {
	err := User("x", Image("u", ""), Document("", "")).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attachment #1")
	assert.ErrorIs(t, err, ErrInvalidMessage)
}
