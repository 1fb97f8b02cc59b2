// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Client.Complete реализует llm.Provider (и prompt.ChatCompletionFunc).
// RespondWith* дают функции инференса для builder-first промптов.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/llm"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// Client реализует llm.Provider для OpenAI-совместимых API.
//
// Поддерживает:
//   - Текстовые completion с tool calls
//   - Vision запросы (картинки во вложениях user сообщений)
//   - JSON режим (response_format: json_object)
//   - Генерацию изображений
type Client struct {
	api   *openai.Client
	model string
}

var _ llm.Provider = (*Client)(nil)

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// BaseURL позволяет работать с OpenAI-совместимыми провайдерами (Zai, DeepSeek и т.д.).
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}
	if modelDef.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: modelDef.ModelName,
	}
}

// Complete выполняет chat completion.
//
// Алгоритм:
//  1. Конвертирует сообщения и конфиг в запрос SDK
//  2. Вызывает API
//  3. Берёт первый choice и конвертирует обратно
//
// Пустой список choices → chat.ErrNoCompletionChoices.
func (c *Client) Complete(ctx context.Context, messages []chat.Message, cfg config.ModelConfig) (chat.Completion, error) {
	if err := chat.ValidateAll(messages); err != nil {
		return chat.Completion{}, err
	}

	startTime := time.Now()
	req := c.buildRequest(messages, cfg)

	utils.Debug("LLM request started",
		"model", req.Model,
		"messages_count", len(messages),
		"format", cfg.ResponseFormat)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", req.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return chat.Completion{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return chat.Completion{}, chat.ErrNoCompletionChoices
	}

	completion := mapCompletion(resp)

	utils.Info("LLM response received",
		"model", req.Model,
		"finish_reason", completion.FinishReason,
		"tool_calls_count", len(completion.Message.ToolCalls),
		"content_length", len(completion.Message.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return completion, nil
}

func (c *Client) buildRequest(messages []chat.Message, cfg config.ModelConfig) openai.ChatCompletionRequest {
	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: openaiMsgs,
		Seed:     cfg.Seed,
	}
	if cfg.Model != "" {
		req.Model = cfg.Model
	}
	if cfg.Temperature != nil {
		req.Temperature = float32(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		req.TopP = float32(*cfg.TopP)
	}
	if cfg.FrequencyPenalty != nil {
		req.FrequencyPenalty = float32(*cfg.FrequencyPenalty)
	}
	if cfg.MaxTokens != nil {
		req.MaxTokens = *cfg.MaxTokens
	}
	if cfg.Stop != "" {
		req.Stop = []string{cfg.Stop}
	}
	if cfg.IsJSON() {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

// mapToOpenAI конвертирует наше сообщение в формат SDK.
// Если есть картинки, создаём MultiContent (Vision).
func mapToOpenAI(m chat.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       string(m.Role),
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}

	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}

	if len(m.Attachments) == 0 {
		msg.Content = m.Content
		return msg
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: m.Content,
		},
	}
	for _, att := range m.Attachments {
		if !att.IsImage() {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: documentText(att),
			})
			continue
		}
		detail := openai.ImageURLDetailAuto
		if att.Detail != "" {
			detail = openai.ImageURLDetail(att.Detail)
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    att.URL, // base64 data-uri или http ссылка
				Detail: detail,
			},
		})
	}

	msg.MultiContent = parts
	return msg
}

// documentText — текстовое представление документа для API без файловых частей.
func documentText(att chat.Attachment) string {
	if att.URL == "" {
		return "Attached document: " + att.Title
	}
	return fmt.Sprintf("Attached document: %s (%s)", att.Title, att.URL)
}

// mapCompletion берёт первый choice. Вызывающий гарантирует что он есть.
func mapCompletion(resp openai.ChatCompletionResponse) chat.Completion {
	choice := resp.Choices[0]

	msg := chat.Message{
		Role:    chat.Role(choice.Message.Role),
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, chat.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	completion := chat.Completion{
		Message:      msg,
		FinishReason: mapFinishReason(choice.FinishReason),
	}
	if resp.Usage.TotalTokens > 0 {
		tokens := resp.Usage.TotalTokens
		completion.Tokens = &tokens
	}
	return completion
}

func mapFinishReason(r openai.FinishReason) chat.FinishReason {
	switch r {
	case openai.FinishReasonLength:
		return chat.FinishLength
	case openai.FinishReasonContentFilter:
		return chat.FinishContentFilter
	case openai.FinishReasonToolCalls:
		return chat.FinishToolCalls
	default:
		// stop, function_call (устаревшее), null
		return chat.FinishStop
	}
}
