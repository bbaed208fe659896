package storage

import (
	"context"
	"testing"
	"vidhub-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectStore_UnknownDriver(t *testing.T) {
	_, err := NewObjectStore(context.Background(), config.StorageConfig{Driver: "gcs"})
	assert.ErrorContains(t, err, "gcs")
}

func TestNewObjectStore_S3DoesNotDial(t *testing.T) {
	store, err := NewObjectStore(context.Background(), config.StorageConfig{
		Driver:          "s3",
		Endpoint:        "https://account.r2.cloudflarestorage.com",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "videos",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)
}
