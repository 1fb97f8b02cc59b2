package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlExts — расширения файлов промптов в порядке приоритета.
var yamlExts = []string{".yaml", ".yml"}

// FileSource — загрузка промптов из YAML файлов: <baseDir>/<promptID>.yaml (или .yml).
type FileSource struct {
	baseDir string
}

// NewFileSource создаёт FileSource с указанной базовой директорией.
func NewFileSource(baseDir string) *FileSource {
	return &FileSource{baseDir: baseDir}
}

// Load загружает промпт из YAML файла.
//
// promptID может содержать подкаталоги ("support/refund"), но не может
// выходить за пределы baseDir.
func (s *FileSource) Load(_ context.Context, promptID string) (*PromptData, error) {
	clean := filepath.Clean(filepath.FromSlash(promptID))
	if promptID == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("invalid prompt id: %q", promptID)
	}

	for _, ext := range yamlExts {
		path := filepath.Join(s.baseDir, clean+ext)

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file: %w", err)
		}
		return parseYAML(data)
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, promptID, s.baseDir)
}

// List возвращает идентификаторы промптов верхнего уровня baseDir, отсортированные.
func (s *FileSource) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts dir: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func parseYAML(data []byte) (*PromptData, error) {
	var file PromptData
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt YAML: %w", err)
	}
	return &file, nil
}
