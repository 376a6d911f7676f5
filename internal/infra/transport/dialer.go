package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"agenthub/internal/domain"
)

const defaultMaxRetries = 3

// Dialer produces the wire transport for one server spec. The wire
// protocol is an implementation detail of the connection; tests swap in
// in-memory transports through this interface.
type Dialer interface {
	Dial(ctx context.Context, spec domain.ServerSpec) (mcp.Transport, error)
}

// StreamableHTTPDialer dials tool servers over MCP streamable HTTP,
// attaching the spec's credential as a bearer token.
type StreamableHTTPDialer struct {
	MaxRetries int
}

func (d *StreamableHTTPDialer) Dial(_ context.Context, spec domain.ServerSpec) (mcp.Transport, error) {
	endpoint := strings.TrimSpace(spec.Endpoint)
	if endpoint == "" {
		return nil, errors.New("server endpoint is required")
	}

	headers := http.Header{}
	if spec.APIKey != "" {
		headers.Set("Authorization", "Bearer "+spec.APIKey)
	}

	maxRetries := d.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &mcp.StreamableClientTransport{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Transport: &headerRoundTripper{
				base:    http.DefaultTransport,
				headers: headers,
			},
		},
		MaxRetries: maxRetries,
	}, nil
}

type headerRoundTripper struct {
	base    http.RoundTripper
	headers http.Header
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, values := range h.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return h.base.RoundTrip(req)
}
