// Package host assembles the four tool servers behind a single HTTP
// handler, one mount point per server.
package host

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agenthub/internal/server/calendar"
	"agenthub/internal/server/crawler"
	"agenthub/internal/server/memory"
	"agenthub/internal/server/tasks"
)

type Options struct {
	// DataDir holds the memory and task store files.
	DataDir string
	// APIKey, when set, is required as a bearer token on every request.
	APIKey string
	Logger *zap.Logger
}

// Host owns the tool servers and their stores.
type Host struct {
	handler http.Handler
	closers []func() error
}

func New(opts Options) (*Host, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	memStore, err := memory.OpenStore(filepath.Join(dataDir, "memories.db"))
	if err != nil {
		return nil, err
	}
	taskStore, err := tasks.OpenStore(filepath.Join(dataDir, "tasks.db"))
	if err != nil {
		_ = memStore.Close()
		return nil, err
	}

	mux := http.NewServeMux()
	mount := func(path string, srv *mcp.Server) {
		mux.Handle(path, mcp.NewStreamableHTTPHandler(
			func(*http.Request) *mcp.Server { return srv },
			&mcp.StreamableHTTPOptions{JSONResponse: true},
		))
	}
	mount("/memory", memory.NewServer(memStore, logger))
	mount("/tasks", tasks.NewServer(taskStore, logger))
	mount("/calendar", calendar.NewServer(nil, logger))
	mount("/crawler", crawler.NewServer(nil, logger))

	var handler http.Handler = mux
	if opts.APIKey != "" {
		handler = requireBearer(opts.APIKey, logger, mux)
	}

	return &Host{
		handler: handler,
		closers: []func() error{taskStore.Close, memStore.Close},
	}, nil
}

func (h *Host) Handler() http.Handler {
	return h.handler
}

// Close releases the stores, continuing past individual failures.
func (h *Host) Close() error {
	var errs []error
	for _, close := range h.closers {
		if err := close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func requireBearer(apiKey string, logger *zap.Logger, next http.Handler) http.Handler {
	expected := fmt.Sprintf("Bearer %s", apiKey)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != expected {
			logger.Warn("rejected unauthorized request",
				zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
