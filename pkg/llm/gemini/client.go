// Package gemini реализует адаптер LLM провайдера для Google Gemini (google.golang.org/genai).
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/llm"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// Client реализует llm.Provider поверх Gemini API.
type Client struct {
	api   *genai.Client
	model string
}

var _ llm.Provider = (*Client)(nil)

// NewClient создаёт клиент Gemini API по конфигурации модели.
func NewClient(ctx context.Context, modelDef config.ModelDef) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  modelDef.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if modelDef.BaseURL != "" {
		cc.HTTPOptions.BaseURL = modelDef.BaseURL
	}
	if modelDef.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	api, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{api: api, model: modelDef.ModelName}, nil
}

// Complete выполняет generateContent.
//
// Системные сообщения собираются в SystemInstruction (Gemini не принимает их
// в contents), assistant → роль "model", tool → FunctionResponse.
func (c *Client) Complete(ctx context.Context, messages []chat.Message, cfg config.ModelConfig) (chat.Completion, error) {
	if err := chat.ValidateAll(messages); err != nil {
		return chat.Completion{}, err
	}

	startTime := time.Now()

	model := c.model
	if cfg.Model != "" {
		model = cfg.Model
	}

	contents, system, err := buildContents(messages)
	if err != nil {
		return chat.Completion{}, err
	}
	genCfg := buildConfig(cfg, system)

	utils.Debug("LLM request started",
		"provider", llm.ProviderGemini,
		"model", model,
		"messages_count", len(messages),
		"format", cfg.ResponseFormat)

	resp, err := c.api.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return chat.Completion{}, fmt.Errorf("gemini generation failed: %w", err)
	}

	completion, err := mapResponse(resp)
	if err != nil {
		return chat.Completion{}, err
	}

	utils.Info("LLM response received",
		"model", model,
		"finish_reason", completion.FinishReason,
		"content_length", len(completion.Message.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return completion, nil
}

func buildConfig(cfg config.ModelConfig, system string) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{}

	if system != "" {
		out.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if cfg.Temperature != nil {
		out.Temperature = genai.Ptr(float32(*cfg.Temperature))
	}
	if cfg.TopP != nil {
		out.TopP = genai.Ptr(float32(*cfg.TopP))
	}
	if cfg.FrequencyPenalty != nil {
		out.FrequencyPenalty = genai.Ptr(float32(*cfg.FrequencyPenalty))
	}
	if cfg.Seed != nil {
		out.Seed = genai.Ptr(int32(*cfg.Seed))
	}
	if cfg.MaxTokens != nil {
		out.MaxOutputTokens = int32(*cfg.MaxTokens)
	}
	if cfg.Stop != "" {
		out.StopSequences = []string{cfg.Stop}
	}
	if cfg.IsJSON() {
		out.ResponseMIMEType = "application/json"
	}
	return out
}

func buildContents(messages []chat.Message) ([]*genai.Content, string, error) {
	var (
		contents []*genai.Content
		system   []string
	)

	for i, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, m.Content)

		case chat.RoleUser:
			parts := []*genai.Part{{Text: m.Content}}
			for _, att := range m.Attachments {
				part, err := attachmentPart(att)
				if err != nil {
					return nil, "", fmt.Errorf("message #%d: %w", i, err)
				}
				parts = append(parts, part)
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: parts})

		case chat.RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, "", fmt.Errorf("message #%d: tool call %s arguments: %w", i, tc.ID, err)
					}
				}
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: parts})

		case chat.RoleTool:
			contents = append(contents, &genai.Content{
				Role: string(genai.RoleUser),
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     m.Name,
					Response: map[string]any{"output": m.Content},
				}}},
			})

		default:
			return nil, "", fmt.Errorf("message #%d: %w: unknown role %q", i, chat.ErrInvalidMessage, m.Role)
		}
	}

	return contents, strings.Join(system, "\n"), nil
}

// attachmentPart: data URL → InlineData, иначе ссылка → FileData.
// Документ без URL передаётся текстом с названием.
func attachmentPart(att chat.Attachment) (*genai.Part, error) {
	if !att.IsImage() && att.URL == "" {
		return &genai.Part{Text: "Attached document: " + att.Title}, nil
	}
	if rest, ok := strings.CutPrefix(att.URL, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("unsupported data url attachment")
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode attachment: %w", err)
		}
		return &genai.Part{InlineData: &genai.Blob{
			MIMEType: strings.TrimSuffix(meta, ";base64"),
			Data:     data,
		}}, nil
	}

	mimeType := mime.TypeByExtension(path.Ext(att.URL))
	if mimeType == "" {
		mimeType = "image/jpeg"
		if !att.IsImage() {
			mimeType = "application/pdf"
		}
	}
	return &genai.Part{FileData: &genai.FileData{FileURI: att.URL, MIMEType: mimeType}}, nil
}

func mapResponse(resp *genai.GenerateContentResponse) (chat.Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return chat.Completion{}, chat.ErrNoCompletionChoices
	}
	cand := resp.Candidates[0]

	msg := chat.Message{Role: chat.RoleAssistant}
	var text strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.FunctionCall != nil {
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return chat.Completion{}, fmt.Errorf("encode function call args: %w", err)
				}
				msg.ToolCalls = append(msg.ToolCalls, chat.ToolCall{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				})
				continue
			}
			if !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	msg.Content = text.String()

	completion := chat.Completion{
		Message:      msg,
		FinishReason: mapFinishReason(cand.FinishReason, len(msg.ToolCalls) > 0),
	}
	if resp.UsageMetadata != nil && resp.UsageMetadata.TotalTokenCount > 0 {
		tokens := int(resp.UsageMetadata.TotalTokenCount)
		completion.Tokens = &tokens
	}
	return completion, nil
}

func mapFinishReason(r genai.FinishReason, hasToolCalls bool) chat.FinishReason {
	switch r {
	case genai.FinishReasonMaxTokens:
		return chat.FinishLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return chat.FinishContentFilter
	}
	if hasToolCalls {
		return chat.FinishToolCalls
	}
	return chat.FinishStop
}
