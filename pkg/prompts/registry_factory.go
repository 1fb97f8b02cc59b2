package prompts

import (
	"context"
	"fmt"

	"github.com/ilkoid/poncho-prompt/pkg/config"
	"github.com/ilkoid/poncho-prompt/pkg/prompts/sources"
	"github.com/ilkoid/poncho-prompt/pkg/s3storage"
)

// CreateSourceRegistry создаёт реестр источников промптов из конфигурации.
//
// Fallback Chain:
// 1. Источники из prompt_sources (в порядке объявления)
// 2. Default source (встроенные промпты) — всегда последний
//
// Пустой prompt_sources означает один file source из app.prompts_dir.
func CreateSourceRegistry(ctx context.Context, cfg *config.AppConfig) (*SourceRegistry, error) {
	registry := NewSourceRegistry()

	sourceCfgs := cfg.PromptSources
	if len(sourceCfgs) == 0 {
		sourceCfgs = []config.PromptSourceConfig{{Type: "file"}}
	}

	for _, sourceCfg := range sourceCfgs {
		source, err := createSource(ctx, sourceCfg, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create prompt source type '%s': %w", sourceCfg.Type, err)
		}
		registry.AddSource(source)
	}

	defaultSrc := sources.NewDefaultSource()
	defaultSrc.PopulateDefaults()
	registry.AddSource(defaultSrc)

	return registry, nil
}

// createSource создаёт источник промптов по типу.
func createSource(ctx context.Context, cfg config.PromptSourceConfig, appCfg *config.AppConfig) (PromptSource, error) {
	switch cfg.Type {
	case "file":
		baseDir := cfg.Config["base_dir"]
		if baseDir == "" {
			baseDir = appCfg.App.PromptsDir
		}
		return sources.NewFileSource(baseDir), nil

	case "s3":
		client, err := s3storage.New(appCfg.S3)
		if err != nil {
			return nil, err
		}
		return sources.NewS3Source(client, cfg.Config["prefix"]), nil

	case "database":
		connString := cfg.Config["connection_string"]
		if connString == "" {
			return nil, fmt.Errorf("database source requires 'connection_string' config")
		}

		db, err := sources.OpenDatabase(cfg.Config["driver"], connString)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return sources.NewDatabaseSource(db, cfg.Config["table"])

	case "api":
		endpoint := cfg.Config["endpoint"]
		if endpoint == "" {
			return nil, fmt.Errorf("api source requires 'endpoint' config")
		}
		return sources.NewAPISource(endpoint, cfg.Config["auth_token"]), nil

	default:
		return nil, fmt.Errorf("unknown prompt source type: '%s'", cfg.Type)
	}
}
