package config

// Форматы ответа модели.
const (
	FormatNatural = "natural"
	FormatJSON    = "json"
)

// ModelConfig — параметры инференса. Каждое поле опционально:
// nil или пустая строка означают "не задано" и не перекрывают нижний слой.
//
// Слои объединяются слева направо: дефолт билдера → дефолт промпта → параметры вызова.
type ModelConfig struct {
	Provider         string   `yaml:"provider,omitempty" json:"provider,omitempty"`
	Model            string   `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature      *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	TopP             *float64 `yaml:"top_p,omitempty" json:"top_p,omitempty"`
	Stop             string   `yaml:"stop,omitempty" json:"stop,omitempty"`
	Seed             *int     `yaml:"seed,omitempty" json:"seed,omitempty"`
	FrequencyPenalty *float64 `yaml:"frequency_penalty,omitempty" json:"frequency_penalty,omitempty"`
	ResponseFormat   string   `yaml:"response_format,omitempty" json:"response_format,omitempty"` // "natural" или "json"
	MaxTokens        *int     `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}

// Merge возвращает новый конфиг: поля override поверх c.
//
// Ни c, ни override не изменяются; указатели в результате не разделяются
// с входными значениями.
func (c ModelConfig) Merge(override ModelConfig) ModelConfig {
	out := ModelConfig{
		Provider:         pick(c.Provider, override.Provider),
		Model:            pick(c.Model, override.Model),
		Temperature:      pickPtr(c.Temperature, override.Temperature),
		TopP:             pickPtr(c.TopP, override.TopP),
		Stop:             pick(c.Stop, override.Stop),
		Seed:             pickPtr(c.Seed, override.Seed),
		FrequencyPenalty: pickPtr(c.FrequencyPenalty, override.FrequencyPenalty),
		ResponseFormat:   pick(c.ResponseFormat, override.ResponseFormat),
		MaxTokens:        pickPtr(c.MaxTokens, override.MaxTokens),
	}
	return out
}

// IsJSON — true если запрошен JSON-формат ответа.
func (c ModelConfig) IsJSON() bool { return c.ResponseFormat == FormatJSON }

// Merge объединяет слои слева направо. Пустой список — пустой конфиг.
func Merge(layers ...ModelConfig) ModelConfig {
	var out ModelConfig
	for _, layer := range layers {
		out = out.Merge(layer)
	}
	return out
}

// Ptr возвращает указатель на копию v. Удобно для литералов конфигурации.
func Ptr[T any](v T) *T { return &v }

func pick(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func pickPtr[T any](base, override *T) *T {
	switch {
	case override != nil:
		return Ptr(*override)
	case base != nil:
		return Ptr(*base)
	}
	return nil
}
