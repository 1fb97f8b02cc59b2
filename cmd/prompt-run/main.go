/*
prompt-run — загружает промпт из настроенных источников и ведёт с моделью диалог.

Каждая строка stdin — очередная реплика пользователя. Ответ модели добавляется
в историю, поэтому следующие реплики видят весь предыдущий контекст.

	prompt-run -prompt summarize -param sentences=2 < article.txt
	prompt-run -prompt detect_language -json -record
	prompt-run -prompt poster -image -param style=flat -model dalle
*/
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/ilkoid/poncho-prompt/pkg/chat"
	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/debug"
	"github.com/ilkoid/poncho-prompt/pkg/factory"
	"github.com/ilkoid/poncho-prompt/pkg/llm"
	"github.com/ilkoid/poncho-prompt/pkg/llm/openai"
	"github.com/ilkoid/poncho-prompt/pkg/prompt"
	"github.com/ilkoid/poncho-prompt/pkg/prompts"
	"github.com/ilkoid/poncho-prompt/pkg/template"
	"github.com/ilkoid/poncho-prompt/pkg/utils"
)

var (
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	aiStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// paramFlags собирает повторяющиеся -param key=value.
type paramFlags template.Params

func (p paramFlags) String() string { return fmt.Sprint(map[string]string(p)) }

func (p paramFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	p[key] = value
	return nil
}

func main() {
	params := paramFlags{}
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	promptID := flag.String("prompt", "summarize", "prompt id to load")
	modelName := flag.String("model", "", "model name from config (default: models.default_chat)")
	asJSON := flag.Bool("json", false, "request a JSON answer validated against the prompt schema")
	lenient := flag.Bool("lenient", false, "repair malformed JSON answers before validation")
	record := flag.Bool("record", false, "write a debug trace into app.logs_dir")
	rpm := flag.Int("rpm", 0, "max requests per minute (0 = unlimited)")
	image := flag.Bool("image", false, "generate images from the prompt (openai-compatible providers only)")
	imageSize := flag.String("image-size", "1024x1024", "generated image size")
	list := flag.Bool("list", false, "print prompt ids available in configured sources and exit")
	flag.Var(params, "param", "template parameter key=value (repeatable)")
	flag.Parse()

	// 1. Окружение и конфиг
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	if err := utils.InitLogger(cfg.App.LogsDir); err != nil {
		log.Fatalf("Logger init error: %v", err)
	}
	if !cfg.App.Debug {
		utils.SetLevel(utils.LevelInfo)
	}

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	if *list {
		registry, err := prompts.CreateSourceRegistry(ctx, cfg)
		if err != nil {
			log.Fatalf("Prompt sources error: %v", err)
		}
		ids, err := registry.List(ctx)
		if err != nil {
			log.Fatalf("Prompt list error: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	// 2. Модель
	name := *modelName
	if name == "" {
		name = cfg.Models.DefaultChat
	}
	modelDef, ok := cfg.GetChatModel(name)
	if !ok {
		log.Fatalf("Model '%s' not found in config definitions", name)
	}

	complete, err := factory.NewChatCompletion(ctx, modelDef)
	if err != nil {
		log.Fatalf("Provider init error: %v", err)
	}
	complete = factory.WithRateLimit(complete, factory.NewLimiter(*rpm, 1))

	var recorder *debug.Recorder
	if *record {
		recorder, err = debug.NewRecorder(debug.RecorderConfig{
			LogsDir:         cfg.App.LogsDir,
			PromptID:        *promptID,
			IncludeMessages: true,
		})
		if err != nil {
			log.Fatalf("Recorder init error: %v", err)
		}
		complete = recorder.Wrap(complete)
	}

	// 3. Промпт
	registry, err := prompts.CreateSourceRegistry(ctx, cfg)
	if err != nil {
		log.Fatalf("Prompt sources error: %v", err)
	}

	var opts []prompt.Option
	if *lenient {
		opts = append(opts, prompt.WithLenientJSON())
	}

	var ask func(ctx context.Context, timeline []chat.Message) (string, error)
	switch {
	case *image:
		ask, err = imageAsker(ctx, registry, *promptID, modelDef, cfg, *imageSize, params)
		if err != nil {
			log.Fatalf("Image mode error: %v", err)
		}
	case *asJSON:
		instr, err := prompts.LoadSchemaInstruction(ctx, registry, *promptID, modelDef.ModelConfig())
		if err != nil {
			log.Fatalf("Prompt load error: %v", err)
		}
		jsonChat := prompt.NewJSON(instr, complete, opts...)
		ask = func(ctx context.Context, timeline []chat.Message) (string, error) {
			value, err := jsonChat.RequestJSON(ctx, timeline, renderParams(params))
			if err != nil {
				return "", err
			}
			out, err := json.MarshalIndent(value, "", "  ")
			return string(out), err
		}
	default:
		instr, err := prompts.LoadInstruction(ctx, registry, *promptID, modelDef.ModelConfig())
		if err != nil {
			log.Fatalf("Prompt load error: %v", err)
		}
		c := prompt.New(instr, complete, opts...)
		ask = func(ctx context.Context, timeline []chat.Message) (string, error) {
			return c.RequestContent(ctx, timeline, renderParams(params))
		}
	}

	fmt.Println(infoStyle.Render(fmt.Sprintf("model=%s prompt=%s json=%v image=%v", name, *promptID, *asJSON, *image)))

	// 4. Диалог
	exitCode := run(ctx, os.Stdin, ask)

	if recorder != nil {
		if path, err := recorder.Finalize(); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		} else {
			fmt.Println(infoStyle.Render("debug log: " + path))
		}
	}

	if exitCode != 0 {
		shutdown()
		os.Exit(exitCode)
	}
}

// run читает реплики построчно и печатает ответы. Возвращает код выхода.
func run(ctx context.Context, in *os.File, ask func(context.Context, []chat.Message) (string, error)) int {
	var timeline []chat.Message

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ctx.Err() != nil {
			return 1
		}

		fmt.Println(userStyle.Render("> " + line))
		timeline = append(timeline, chat.User(line))

		answer, err := ask(ctx, timeline)
		if err != nil {
			utils.Error("Request failed", "error", err)
			fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
			return 1
		}

		fmt.Println(aiStyle.Render(answer))
		timeline = append(timeline, chat.Assistant(answer))
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("stdin: "+err.Error()))
		return 1
	}
	return 0
}

// imageAsker собирает builder-first промпт для генерации картинок: шаблон из
// источника, каждая реплика — описание. Картинки ужимаются по image_processing
// и сохраняются в app.logs_dir; ответ — пути к файлам.
func imageAsker(ctx context.Context, registry *prompts.SourceRegistry, promptID string, modelDef config.ModelDef, cfg *config.AppConfig, size string, params paramFlags) (func(context.Context, []chat.Message) (string, error), error) {
	switch modelDef.Provider {
	case llm.ProviderOpenAI, "zai", "deepseek":
	default:
		return nil, fmt.Errorf("provider %s does not support image generation", modelDef.Provider)
	}

	file, err := registry.Load(ctx, promptID)
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(modelDef)
	builder := prompt.NewBuilder[config.ModelConfig, string](modelDef.ModelConfig())
	generate := prompt.Define(builder, file.Template,
		openai.ResizeImages(
			client.RespondWithImage(openai.ImageB64JSON, openai.ImageOptions{Size: size, N: 1}),
			cfg.ImageProcessing.MaxWidth,
			cfg.ImageProcessing.Quality,
		),
		file.Config,
	)

	return func(ctx context.Context, timeline []chat.Message) (string, error) {
		images, err := generate.Request(ctx, prompt.Args[config.ModelConfig, string]{
			TemplateArgs: renderParams(params),
			Request:      timeline[len(timeline)-1].Content,
		})
		if err != nil {
			return "", err
		}

		paths := make([]string, 0, len(images))
		stamp := time.Now().Format("20060102_150405")
		for i, img := range images {
			raw, err := base64.StdEncoding.DecodeString(img)
			if err != nil {
				return "", fmt.Errorf("image #%d: %w", i, err)
			}
			path := filepath.Join(cfg.App.LogsDir, fmt.Sprintf("image_%s_%d.jpg", stamp, i))
			if err := os.WriteFile(path, raw, 0o644); err != nil {
				return "", fmt.Errorf("save image: %w", err)
			}
			paths = append(paths, path)
		}
		return strings.Join(paths, "\n"), nil
	}, nil
}

// renderParams возвращает nil для пустого набора: статические промпты не принимают параметры.
func renderParams(p paramFlags) template.Params {
	if len(p) == 0 {
		return nil
	}
	return template.Params(p)
}
