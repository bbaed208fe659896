package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9090"
  mode: "debug"
storage:
  driver: "s3"
  endpoint: "https://example.r2.cloudflarestorage.com"
  bucket_name: "videos"
  max_parts: 200
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileValuesAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "videos", cfg.Storage.BucketName)
	assert.Equal(t, 200, cfg.Storage.MaxParts)

	// 未配置的字段取默认值
	assert.Equal(t, int64(5<<20), cfg.Storage.PartSizeBytes)
	assert.Equal(t, int64(512<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "auto", cfg.Storage.Region)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("STORAGE_BUCKET_NAME", "from-env")
	t.Setenv("STORAGE_ACCESS_KEY_ID", "AKIA-test")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Storage.BucketName)
	assert.Equal(t, "AKIA-test", cfg.Storage.AccessKeyID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidPartConfig(t *testing.T) {
	tests := []struct {
		name    string
		storage string
		want    string
	}{
		{"part size below 5MiB", "  part_size_bytes: 1048576\n", "storage.part_size_bytes"},
		{"zero part size", "  part_size_bytes: 0\n", "storage.part_size_bytes"},
		{"zero max parts", "  max_parts: 0\n", "storage.max_parts"},
		{"max parts above protocol limit", "  max_parts: 10001\n", "storage.max_parts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "storage:\n  bucket_name: \"videos\"\n"+tt.storage))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_AcceptsMinimumPartSize(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage:\n  part_size_bytes: 5242880\n  max_parts: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(MinPartSizeBytes), cfg.Storage.PartSizeBytes)
	assert.Equal(t, 1, cfg.Storage.MaxParts)
}
