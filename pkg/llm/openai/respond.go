package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
	"github.com/ilkoid/poncho-prompt/pkg/structured"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

// ChatRequest — данные вызова builder-first промпта: сообщения после системного.
type ChatRequest struct {
	Messages []chat.Message
}

// ChatInference — функция инференса поверх chat completion.
type ChatInference[O any] = prompt.Inference[config.ModelConfig, ChatRequest, O]

// RespondWithCompletion отправляет отрендеренный шаблон системным сообщением
// перед request.Messages и возвращает completion целиком.
func (c *Client) RespondWithCompletion() ChatInference[chat.Completion] {
	return prompt.InferenceFunc[config.ModelConfig, ChatRequest, chat.Completion](
		func(ctx context.Context, in prompt.Input[config.ModelConfig, ChatRequest]) (chat.Completion, error) {
			messages := prompt.PrependSystem(chat.System(in.RenderedTemplate), in.Request.Messages)
			return c.Complete(ctx, messages, in.Config)
		},
	)
}

// RespondWithString как RespondWithCompletion, но возвращает только текст ответа.
func (c *Client) RespondWithString() ChatInference[string] {
	completion := c.RespondWithCompletion()
	return prompt.InferenceFunc[config.ModelConfig, ChatRequest, string](
		func(ctx context.Context, in prompt.Input[config.ModelConfig, ChatRequest]) (string, error) {
			res, err := completion.Infer(ctx, in)
			if err != nil {
				return "", err
			}
			return res.Message.Content, nil
		},
	)
}

// RespondWithJSON дописывает инструкцию со схемой, включает JSON режим
// и декодирует ответ в T.
func RespondWithJSON[T any](c *Client, schema structured.Schema[T], opts ...prompt.JSONOption[config.ModelConfig]) ChatInference[T] {
	opts = append([]prompt.JSONOption[config.ModelConfig]{prompt.WithConfig(forceJSON)}, opts...)
	return prompt.JSON(schema, c.RespondWithString(), opts...)
}

func forceJSON(cfg config.ModelConfig) config.ModelConfig {
	return cfg.Merge(config.ModelConfig{ResponseFormat: config.FormatJSON})
}

// ImageFormat — формат результата генерации изображений.
type ImageFormat string

const (
	ImageURL     ImageFormat = openai.CreateImageResponseFormatURL
	ImageB64JSON ImageFormat = openai.CreateImageResponseFormatB64JSON
)

// ImageOptions — параметры генерации, не входящие в ModelConfig.
type ImageOptions struct {
	Size string // "1024x1024" и т.д.
	N    int
}

// RespondWithImage генерирует изображения по описанию
// "<отрендеренный шаблон>\n<request>". Возвращает URL или base64 строки.
func (c *Client) RespondWithImage(format ImageFormat, opts ImageOptions) prompt.Inference[config.ModelConfig, string, []string] {
	return prompt.InferenceFunc[config.ModelConfig, string, []string](
		func(ctx context.Context, in prompt.Input[config.ModelConfig, string]) ([]string, error) {
			startTime := time.Now()

			req := openai.ImageRequest{
				Prompt:         in.RenderedTemplate + "\n" + in.Request,
				Model:          in.Config.Model,
				N:              opts.N,
				Size:           opts.Size,
				ResponseFormat: string(format),
			}

			resp, err := c.api.CreateImage(ctx, req)
			if err != nil {
				utils.Error("Image generation failed", "error", err, "model", req.Model)
				return nil, fmt.Errorf("openai image api error: %w", err)
			}

			out := make([]string, 0, len(resp.Data))
			for _, d := range resp.Data {
				switch format {
				case ImageB64JSON:
					out = append(out, d.B64JSON)
				default:
					out = append(out, d.URL)
				}
			}

			utils.Info("Images generated",
				"count", len(out),
				"format", format,
				"duration_ms", time.Since(startTime).Milliseconds())
			return out, nil
		},
	)
}

// ResizeImages ужимает base64 картинки, которые вернула infer
// (см. RespondWithImage с ImageB64JSON). Результат — base64 JPEG.
func ResizeImages[C, X any](infer prompt.Inference[C, X, []string], maxWidth, quality int) prompt.Inference[C, X, []string] {
	return prompt.InferenceFunc[C, X, []string](
		func(ctx context.Context, in prompt.Input[C, X]) ([]string, error) {
			images, err := infer.Infer(ctx, in)
			if err != nil {
				return nil, err
			}

			out := make([]string, len(images))
			for i, img := range images {
				resized, err := utils.ResizeBase64(img, maxWidth, quality)
				if err != nil {
					return nil, fmt.Errorf("image #%d: %w", i, err)
				}
				out[i] = resized
			}
			return out, nil
		},
	)
}
