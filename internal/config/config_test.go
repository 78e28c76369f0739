package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "paper_share", cfg.Database.Name)
	assert.Equal(t, "auto", cfg.S3.Region)
	assert.True(t, cfg.S3.UseSSL)
	assert.Equal(t, 168*time.Hour, cfg.JWT.Expiration)
}

func TestLoadConfig_FromFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	contents := `
server:
  address: ":9090"
database:
  uri: "mongodb://db:27017"
  name: "papers_test"
s3:
  endpoint: "https://accountid.r2.cloudflarestorage.com"
  bucket_name: "papers"
  public_url: "https://files.example.com"
jwt:
  secret: "file-secret"
  expiration: "24h"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "papers_test", cfg.Database.Name)
	assert.Equal(t, "papers", cfg.S3.BucketName)
	assert.Equal(t, "https://files.example.com", cfg.S3.PublicURL)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}
