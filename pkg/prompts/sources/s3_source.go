package sources

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/ilkoid/poncho-prompt/pkg/s3storage"
)

// S3Source — загрузка YAML промптов из объектного хранилища: <prefix>/<promptID>.yaml
type S3Source struct {
	client s3storage.ClientInterface
	prefix string
}

// NewS3Source создаёт источник поверх S3 клиента.
func NewS3Source(client s3storage.ClientInterface, prefix string) *S3Source {
	return &S3Source{client: client, prefix: prefix}
}

// Load скачивает и парсит объект.
func (s *S3Source) Load(ctx context.Context, promptID string) (*PromptData, error) {
	key := path.Join(s.prefix, promptID+".yaml")

	data, err := s.client.DownloadFile(ctx, key)
	if err != nil {
		if errors.Is(err, s3storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: s3 key %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("s3 download failed: %w", err)
	}

	return parseYAML(data)
}

// List возвращает идентификаторы всех промптов под префиксом.
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	objects, err := s.client.ListFiles(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("s3 list failed: %w", err)
	}

	ids := make([]string, 0, len(objects))
	for _, obj := range objects {
		if path.Ext(obj.Key) != ".yaml" {
			continue
		}
		name := path.Base(obj.Key)
		ids = append(ids, name[:len(name)-len(".yaml")])
	}
	return ids, nil
}
