package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"agenthub/internal/domain"
)

func TestParseSkipsMalformedEntries(t *testing.T) {
	document := `
servers:
  - name: memory
    endpoint: http://127.0.0.1:8000/memory
    apiKey: key-1
  - name: ""
    endpoint: http://127.0.0.1:8000/tasks
    apiKey: key-2
  - name: tasks
    endpoint: not-a-url
    apiKey: key-3
  - name: calendar
    endpoint: http://127.0.0.1:8000/calendar
    apiKey: ""
  - name: crawler
    endpoint: http://127.0.0.1:8000/crawler
    apiKey: key-4
`
	loader := NewLoader(nil)
	cfg, err := loader.Parse(document)
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 2)
	require.Equal(t, "memory", cfg.Servers[0].Name)
	require.Equal(t, "crawler", cfg.Servers[1].Name)
}

func TestParseSkipsDuplicateNames(t *testing.T) {
	document := `
servers:
  - name: memory
    endpoint: http://127.0.0.1:8000/memory
    apiKey: key-1
  - name: memory
    endpoint: http://127.0.0.1:9000/memory
    apiKey: key-2
`
	loader := NewLoader(nil)
	cfg, err := loader.Parse(document)
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 1)
	require.Equal(t, "http://127.0.0.1:8000/memory", cfg.Servers[0].Endpoint)
}

func TestParseDefaults(t *testing.T) {
	loader := NewLoader(nil)
	cfg, err := loader.Parse(`servers: []`)
	require.NoError(t, err)

	require.Equal(t, domain.DefaultCallTimeoutSeconds, cfg.Runtime.CallTimeoutSeconds)
	require.Equal(t, domain.DefaultConnectTimeoutSeconds, cfg.Runtime.ConnectTimeoutSeconds)
	require.Equal(t, domain.DefaultObservabilityListenAddress, cfg.Runtime.ObservabilityAddress)
	require.Equal(t, "openai", cfg.Oracle.Provider)
	require.Equal(t, "gpt-4o-mini", cfg.Oracle.Model)
	require.Equal(t, "OPENAI_API_KEY", cfg.Oracle.APIKeyEnvVar)
	require.Empty(t, cfg.Servers)
}

func TestParseRejectsNonPositiveTimeouts(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Parse(`callTimeoutSeconds: 0`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "callTimeoutSeconds")
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_MEMORY_KEY", "expanded-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	document := `
servers:
  - name: memory
    endpoint: http://127.0.0.1:8000/memory
    apiKey: ${TEST_MEMORY_KEY}
`
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 1)
	require.Equal(t, "expanded-secret", cfg.Servers[0].APIKey)
}

func TestLoadMissingEnvBecomesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	document := `
servers:
  - name: memory
    endpoint: http://127.0.0.1:8000/memory
    apiKey: ${DEFINITELY_NOT_SET_VAR}
`
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	// The entry loses its key and is dropped as malformed.
	require.Empty(t, cfg.Servers)
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
