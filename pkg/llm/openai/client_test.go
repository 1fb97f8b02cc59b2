package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
	"github.com/ilkoid/poncho-prompt/pkg/structured"
	"github.com/ilkoid/poncho-prompt/pkg/template"
)

// fakeAPI — минимальный OpenAI-совместимый сервер.
type fakeAPI struct {
	lastChat  openai.ChatCompletionRequest
	lastImage openai.ImageRequest
	chatResp  openai.ChatCompletionResponse
	imageResp openai.ImageResponse
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastChat))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.chatResp)
	})
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastImage))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.imageResp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	srv := f.server(t)
	return NewClient(config.ModelDef{
		APIKey:    "test-key",
		ModelName: "gpt-4o-mini",
		BaseURL:   srv.URL + "/v1",
	})
}

func assistantReply(content string, finish openai.FinishReason) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: finish,
		}},
		Usage: openai.Usage{TotalTokens: 42},
	}
}

// TestNewClient тестирует создание клиента.
func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		modelDef config.ModelDef
	}{
		{
			name:     "minimal config",
			modelDef: config.ModelDef{APIKey: "test-key", ModelName: "gpt-4"},
		},
		{
			name:     "with custom base url",
			modelDef: config.ModelDef{APIKey: "test-key", ModelName: "glm-4", BaseURL: "https://api.z.ai/v4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.modelDef)
			require.NotNil(t, client)
			assert.Equal(t, tt.modelDef.ModelName, client.model)
			assert.NotNil(t, client.api)
		})
	}
}

func TestMapToOpenAI(t *testing.T) {
	tests := []struct {
		name  string
		input chat.Message
		check func(t *testing.T, got openai.ChatCompletionMessage)
	}{
		{
			name:  "plain text",
			input: chat.User("hi"),
			check: func(t *testing.T, got openai.ChatCompletionMessage) {
				assert.Equal(t, "user", got.Role)
				assert.Equal(t, "hi", got.Content)
				assert.Empty(t, got.MultiContent)
			},
		},
		{
			name:  "vision",
			input: chat.User("what is it?", chat.Attachment{URL: "data:image/png;base64,AAA"}),
			check: func(t *testing.T, got openai.ChatCompletionMessage) {
				assert.Empty(t, got.Content)
				require.Len(t, got.MultiContent, 2)
				assert.Equal(t, openai.ChatMessagePartTypeText, got.MultiContent[0].Type)
				assert.Equal(t, "data:image/png;base64,AAA", got.MultiContent[1].ImageURL.URL)
				assert.Equal(t, openai.ImageURLDetailAuto, got.MultiContent[1].ImageURL.Detail)
			},
		},
		{
			name:  "document as text part",
			input: chat.User("summarize", chat.Document("contract.pdf", "https://x/contract.pdf"), chat.Image("https://x/a.png", "scan")),
			check: func(t *testing.T, got openai.ChatCompletionMessage) {
				require.Len(t, got.MultiContent, 3)
				assert.Equal(t, openai.ChatMessagePartTypeText, got.MultiContent[1].Type)
				assert.Equal(t, "Attached document: contract.pdf (https://x/contract.pdf)", got.MultiContent[1].Text)
				assert.Equal(t, openai.ChatMessagePartTypeImageURL, got.MultiContent[2].Type)
				assert.Equal(t, "https://x/a.png", got.MultiContent[2].ImageURL.URL)
			},
		},
		{
			name:  "assistant tool call",
			input: chat.Assistant("", chat.ToolCall{ID: "call_1", Name: "lookup", Arguments: `{"q":"x"}`}),
			check: func(t *testing.T, got openai.ChatCompletionMessage) {
				require.Len(t, got.ToolCalls, 1)
				assert.Equal(t, openai.ToolTypeFunction, got.ToolCalls[0].Type)
				assert.Equal(t, "lookup", got.ToolCalls[0].Function.Name)
			},
		},
		{
			name:  "tool result",
			input: chat.Tool("call_1", "42"),
			check: func(t *testing.T, got openai.ChatCompletionMessage) {
				assert.Equal(t, "tool", got.Role)
				assert.Equal(t, "call_1", got.ToolCallID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mapToOpenAI(tt.input))
		})
	}
}

func TestComplete_MapsConfigAndResponse(t *testing.T) {
	f := &fakeAPI{chatResp: assistantReply("hello", openai.FinishReasonStop)}
	client := newTestClient(t, f)

	cfg := config.ModelConfig{
		Model:            "gpt-4o",
		Temperature:      config.Ptr(0.5),
		TopP:             config.Ptr(0.9),
		Seed:             config.Ptr(7),
		Stop:             "###",
		FrequencyPenalty: config.Ptr(0.1),
		MaxTokens:        config.Ptr(100),
		ResponseFormat:   config.FormatJSON,
	}
	got, err := client.Complete(context.Background(), []chat.Message{chat.System("sys"), chat.User("hi")}, cfg)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", f.lastChat.Model)
	assert.InDelta(t, 0.5, f.lastChat.Temperature, 1e-6)
	assert.InDelta(t, 0.9, f.lastChat.TopP, 1e-6)
	assert.Equal(t, []string{"###"}, f.lastChat.Stop)
	require.NotNil(t, f.lastChat.Seed)
	assert.Equal(t, 7, *f.lastChat.Seed)
	assert.Equal(t, 100, f.lastChat.MaxTokens)
	require.NotNil(t, f.lastChat.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, f.lastChat.ResponseFormat.Type)
	require.Len(t, f.lastChat.Messages, 2)

	assert.Equal(t, chat.Assistant("hello"), got.Message)
	assert.Equal(t, chat.FinishStop, got.FinishReason)
	require.NotNil(t, got.Tokens)
	assert.Equal(t, 42, *got.Tokens)
}

func TestComplete_DefaultModelAndNaturalFormat(t *testing.T) {
	f := &fakeAPI{chatResp: assistantReply("x", openai.FinishReasonLength)}
	client := newTestClient(t, f)

	got, err := client.Complete(context.Background(), []chat.Message{chat.User("hi")}, config.ModelConfig{})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", f.lastChat.Model)
	assert.Nil(t, f.lastChat.ResponseFormat)
	assert.Equal(t, chat.FinishLength, got.FinishReason)
}

func TestMapFinishReason(t *testing.T) {
	assert.Equal(t, chat.FinishStop, mapFinishReason(openai.FinishReasonFunctionCall))
	assert.Equal(t, chat.FinishToolCalls, mapFinishReason(openai.FinishReasonToolCalls))
	assert.Equal(t, chat.FinishContentFilter, mapFinishReason(openai.FinishReasonContentFilter))
	assert.Equal(t, chat.FinishStop, mapFinishReason(openai.FinishReasonNull))
}

func TestComplete_NoChoices(t *testing.T) {
	f := &fakeAPI{chatResp: openai.ChatCompletionResponse{}}
	client := newTestClient(t, f)

	_, err := client.Complete(context.Background(), []chat.Message{chat.User("hi")}, config.ModelConfig{})
	assert.ErrorIs(t, err, chat.ErrNoCompletionChoices)
}

func TestComplete_RejectsInvalidTimeline(t *testing.T) {
	f := &fakeAPI{chatResp: assistantReply("never", openai.FinishReasonStop)}
	client := newTestClient(t, f)

	timeline := []chat.Message{chat.User("hi"), {Role: chat.RoleTool, Content: "no id"}}
	_, err := client.Complete(context.Background(), timeline, config.ModelConfig{})
	assert.ErrorIs(t, err, chat.ErrInvalidMessage)

	// builder path goes through Complete as well
	p := prompt.Define(prompt.NewBuilder[config.ModelConfig, ChatRequest](config.ModelConfig{}), "system", client.RespondWithString())
	_, err = p.Request(context.Background(), prompt.Args[config.ModelConfig, ChatRequest]{
		Request: ChatRequest{Messages: []chat.Message{{Role: "robot"}}},
	})
	assert.ErrorIs(t, err, chat.ErrInvalidMessage)

	assert.Empty(t, f.lastChat.Messages, "API must not be called")
}

func TestComplete_ToolCallsResponse(t *testing.T) {
	f := &fakeAPI{chatResp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:       "call_9",
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: "lookup", Arguments: "{}"},
				}},
			},
			FinishReason: openai.FinishReasonToolCalls,
		}},
	}}
	client := newTestClient(t, f)

	got, err := client.Complete(context.Background(), nil, config.ModelConfig{})
	require.NoError(t, err)
	assert.Equal(t, chat.FinishToolCalls, got.FinishReason)
	assert.Equal(t, []chat.ToolCall{{ID: "call_9", Name: "lookup", Arguments: "{}"}}, got.Message.ToolCalls)
	assert.Nil(t, got.Tokens)
}

func TestRespondWithString_Builder(t *testing.T) {
	f := &fakeAPI{chatResp: assistantReply("greetings", openai.FinishReasonStop)}
	client := newTestClient(t, f)

	b := prompt.NewBuilder[config.ModelConfig, ChatRequest](config.ModelConfig{Model: "gpt-3.5-turbo"})
	p := prompt.Define(b, "hello {{world}}", client.RespondWithString())

	got, err := p.Request(context.Background(), prompt.Args[config.ModelConfig, ChatRequest]{
		TemplateArgs: template.Params{"world": "earth"},
		Request:      ChatRequest{Messages: []chat.Message{chat.User("hi there")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "greetings", got)
	assert.Equal(t, "gpt-3.5-turbo", f.lastChat.Model)
	require.Len(t, f.lastChat.Messages, 2)
	assert.Equal(t, "system", f.lastChat.Messages[0].Role)
	assert.Equal(t, "hello earth", f.lastChat.Messages[0].Content)
}

func TestRespondWithJSON(t *testing.T) {
	type verdict struct {
		HasMusicalTalent bool `json:"hasMusicalTalent"`
	}

	f := &fakeAPI{chatResp: assistantReply(`{"hasMusicalTalent": true}`, openai.FinishReasonStop)}
	client := newTestClient(t, f)

	b := prompt.NewBuilder[config.ModelConfig, ChatRequest](config.ModelConfig{})
	p := prompt.Define(b, "Does the user have musical talent?",
		RespondWithJSON(client, structured.MustFor[verdict]()))

	got, err := p.Request(context.Background(), prompt.Args[config.ModelConfig, ChatRequest]{})
	require.NoError(t, err)

	assert.True(t, got.HasMusicalTalent)
	require.NotNil(t, f.lastChat.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, f.lastChat.ResponseFormat.Type)
	assert.Contains(t, f.lastChat.Messages[0].Content, structured.InstructionPreamble)
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRespondWithImage(t *testing.T) {
	f := &fakeAPI{imageResp: openai.ImageResponse{
		Data: []openai.ImageResponseDataInner{{URL: "https://img/1.png"}, {URL: "https://img/2.png"}},
	}}
	client := newTestClient(t, f)

	b := prompt.NewBuilder[config.ModelConfig, string](config.ModelConfig{Model: "dall-e-3"})
	p := prompt.Define(b, "A watercolor of {{subject}}", client.RespondWithImage(ImageURL, ImageOptions{N: 2}))

	got, err := p.Request(context.Background(), prompt.Args[config.ModelConfig, string]{
		TemplateArgs: template.Params{"subject": "a lighthouse"},
		Request:      "at dawn",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://img/1.png", "https://img/2.png"}, got)
	assert.Equal(t, "A watercolor of a lighthouse\nat dawn", f.lastImage.Prompt)
	assert.Equal(t, "dall-e-3", f.lastImage.Model)
	assert.Equal(t, openai.CreateImageResponseFormatURL, f.lastImage.ResponseFormat)
}

func TestResizeImages(t *testing.T) {
	f := &fakeAPI{imageResp: openai.ImageResponse{
		Data: []openai.ImageResponseDataInner{{B64JSON: pngBase64(t, 64, 32)}},
	}}
	client := newTestClient(t, f)

	infer := ResizeImages(client.RespondWithImage(ImageB64JSON, ImageOptions{}), 16, 80)
	got, err := infer.Infer(context.Background(), prompt.Input[config.ModelConfig, string]{RenderedTemplate: "x"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	raw, err := base64.StdEncoding.DecodeString(got[0])
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}
