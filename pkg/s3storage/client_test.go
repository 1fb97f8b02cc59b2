package s3storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/poncho-prompt/pkg/config"
)

func TestNew(t *testing.T) {
	c, err := New(config.S3Config{
		Endpoint:  "localhost:9000",
		Bucket:    "prompts",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "prompts", c.bucket)

	_, err = New(config.S3Config{Endpoint: "http://bad endpoint"})
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, mapError("a.yaml", notFound), ErrObjectNotFound)

	other := mapError("a.yaml", errors.New("connection reset"))
	assert.NotErrorIs(t, other, ErrObjectNotFound)
	assert.Contains(t, other.Error(), "a.yaml")
}
