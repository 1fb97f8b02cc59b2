// Package config — конфигурация: параметры инференса (ModelConfig) и YAML конфиг приложения.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Зеркалит структуру config.yaml.
type AppConfig struct {
	Models          ModelsConfig         `yaml:"models"`
	PromptSources   []PromptSourceConfig `yaml:"prompt_sources"`
	S3              S3Config             `yaml:"s3"`
	ImageProcessing ImageProcConfig      `yaml:"image_processing"`
	App             AppSpecific          `yaml:"app"`
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat"` // Алиас для чата по умолчанию (например, "gpt-4o")
	Definitions map[string]ModelDef `yaml:"definitions"`  // Словарь определений моделей
}

// ModelDef — параметры подключения к конкретной модели.
type ModelDef struct {
	Provider  string        `yaml:"provider"`   // "openai", "gemini" или OpenAI-совместимый ("zai", "deepseek")
	ModelName string        `yaml:"model_name"` // Реальное имя в API
	APIKey    string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"` // "60s", "1m"

	// Defaults — слой ModelConfig, который ложится под дефолты промпта
	Defaults ModelConfig `yaml:"defaults"`
}

// ModelConfig возвращает Defaults с заполненными Provider и Model.
func (d ModelDef) ModelConfig() ModelConfig {
	return ModelConfig{Provider: d.Provider, Model: d.ModelName}.Merge(d.Defaults)
}

// PromptSourceConfig — один источник промптов (file, s3, database, api).
type PromptSourceConfig struct {
	Type   string            `yaml:"type"`
	Config map[string]string `yaml:"config"`
}

// S3Config — настройки объектного хранилища.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// ImageProcConfig — настройки ужатия картинок перед отправкой/после генерации.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	PromptsDir string `yaml:"prompts_dir"`
	LogsDir    string `yaml:"logs_dir"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.App.PromptsDir == "" {
		c.App.PromptsDir = "./prompts"
	}
	if c.App.LogsDir == "" {
		c.App.LogsDir = "./logs"
	}
	if c.ImageProcessing.MaxWidth == 0 {
		c.ImageProcessing.MaxWidth = 1024
	}
	if c.ImageProcessing.Quality == 0 {
		c.ImageProcessing.Quality = 85
	}
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Models.DefaultChat != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
			return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
		}
	}

	for name, def := range c.Models.Definitions {
		if def.ModelName == "" {
			return fmt.Errorf("model '%s': model_name is required", name)
		}
		if def.Defaults.ResponseFormat != "" &&
			def.Defaults.ResponseFormat != FormatNatural && def.Defaults.ResponseFormat != FormatJSON {
			return fmt.Errorf("model '%s': unknown response_format '%s'", name, def.Defaults.ResponseFormat)
		}
	}

	for i, src := range c.PromptSources {
		if src.Type == "" {
			return fmt.Errorf("prompt_sources[%d]: type is required", i)
		}
		if src.Type == "s3" && (c.S3.Bucket == "" || c.S3.Endpoint == "") {
			return fmt.Errorf("prompt_sources[%d]: s3 source requires s3.endpoint and s3.bucket", i)
		}
	}

	return nil
}

// GetChatModel возвращает модель по имени или модель по умолчанию.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}
