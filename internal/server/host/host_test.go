package host

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostRequiresBearerWhenConfigured(t *testing.T) {
	servers, err := New(Options{DataDir: t.TempDir(), APIKey: "secret"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = servers.Close() })

	listener := httptest.NewServer(servers.Handler())
	defer listener.Close()

	resp, err := http.Get(listener.URL + "/memory")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, listener.URL+"/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NotEqual(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHostMountsAllServers(t *testing.T) {
	servers, err := New(Options{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = servers.Close() })

	listener := httptest.NewServer(servers.Handler())
	defer listener.Close()

	for _, path := range []string{"/memory", "/tasks", "/calendar", "/crawler"} {
		resp, err := http.Get(listener.URL + path)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		require.NotEqual(t, http.StatusNotFound, resp.StatusCode, "path %s", path)
	}
}

func TestHostCloseIsSafeTwice(t *testing.T) {
	servers, err := New(Options{DataDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, servers.Close())
	// bbolt reports double close; the host must not panic.
	_ = servers.Close()
}
