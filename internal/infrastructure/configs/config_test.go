package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	require.Equal(t, uint16(8080), cfg.HTTP.Port)
	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, "elimpostor", cfg.Mongo.Database)
	require.False(t, cfg.RabbitMQ.Enabled)
	require.Equal(t, 10*time.Minute, cfg.Reclaimer.Interval)
	require.Empty(t, cfg.Logging.File)
	require.Equal(t, 100, cfg.Logging.MaxSizeMB)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
http:
  port: 9090
store:
  backend: mongo
mongo:
  uri: mongodb://db:27017
reclaimer:
  interval: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, uint16(9090), cfg.HTTP.Port)
	require.Equal(t, "mongo", cfg.Store.Backend)
	require.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	require.Equal(t, 5*time.Minute, cfg.Reclaimer.Interval)
	// untouched keys keep their defaults
	require.Equal(t, "0.0.0.0", cfg.HTTP.Host)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("RABBITMQ_URL", "amqp://broker:5672/")
	t.Setenv("LOG_FILE", "/var/log/elimpostor.log")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, uint16(7070), cfg.HTTP.Port)
	require.Equal(t, "mongo", cfg.Store.Backend)
	require.True(t, cfg.RabbitMQ.Enabled)
	require.Equal(t, "amqp://broker:5672/", cfg.RabbitMQ.URL)
	require.Equal(t, "/var/log/elimpostor.log", cfg.Logging.File)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}
