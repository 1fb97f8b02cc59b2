package sources

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx"
	_ "github.com/mattn/go-sqlite3"    // драйвер "sqlite3"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// DatabaseSource — загрузка промптов из SQL базы данных.
//
// Структура таблицы (пример SQL):
//
//	CREATE TABLE prompts (
//	    id       VARCHAR(255) PRIMARY KEY,
//	    template TEXT NOT NULL,
//	    config   TEXT,  -- JSON ModelConfig
//	    schema   TEXT,  -- JSON Schema ответа
//	    metadata TEXT   -- JSON
//	);
type DatabaseSource struct {
	db    *sql.DB
	table string
}

// OpenDatabase открывает соединение по имени драйвера из конфигурации.
// "postgres" и "pgx" → pgx/v5/stdlib, "sqlite3" → mattn/go-sqlite3.
func OpenDatabase(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "pgx", "":
		driver = "pgx"
	case "sqlite3", "sqlite":
		driver = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// NewDatabaseSource создаёт источник промптов поверх открытого *sql.DB.
// table по умолчанию "prompts".
func NewDatabaseSource(db *sql.DB, table string) (*DatabaseSource, error) {
	if table == "" {
		table = "prompts"
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	return &DatabaseSource{
		db:    db,
		table: table,
	}, nil
}

// Load загружает промпт из базы данных по ID.
func (s *DatabaseSource) Load(ctx context.Context, promptID string) (*PromptData, error) {
	var tpl string
	var configJSON, schemaJSON, metadataJSON sql.NullString

	query := fmt.Sprintf(
		"SELECT template, config, schema, metadata FROM %s WHERE id = $1",
		s.table,
	)

	err := s.db.QueryRowContext(ctx, query, promptID).Scan(&tpl, &configJSON, &schemaJSON, &metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: '%s' in table '%s'", ErrNotFound, promptID, s.table)
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	file := &PromptData{Template: tpl}
	if err := unmarshalColumn("config", configJSON, &file.Config); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("schema", schemaJSON, &file.Schema); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("metadata", metadataJSON, &file.Metadata); err != nil {
		return nil, err
	}

	return file, nil
}

func unmarshalColumn(name string, col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), dst); err != nil {
		return fmt.Errorf("parse %s column: %w", name, err)
	}
	return nil
}
