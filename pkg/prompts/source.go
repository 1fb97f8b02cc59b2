package prompts

import "context"

// PromptSource — интерфейс для загрузки промптов из различных источников.
//
// Реализации: File, S3, Database, API, Default (см. пакет sources).
type PromptSource interface {
	// Load загружает промпт по идентификатору.
	// Возвращает ошибку, оборачивающую ErrNotFound, если источник не содержит промпт.
	Load(ctx context.Context, promptID string) (*PromptFile, error)
}

// Lister — источник, умеющий перечислить свои промпты.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}
