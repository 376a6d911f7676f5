// Package crawler implements the web page fetch tool server.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agenthub/internal/server"
)

var serverImpl = &mcp.Implementation{Name: "crawler", Version: "0.1.0"}

const (
	defaultFetchTimeout = 20 * time.Second
	// maxBodyBytes caps how much of a page is read. Pages are fed to a
	// language model downstream; anything past this adds no value.
	maxBodyBytes = 1 << 20
)

// NewServer exposes page fetching as an MCP tool. A nil client gets a
// default with a bounded timeout.
func NewServer(client *http.Client, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	log := logger.Named("crawler")

	srv := mcp.NewServer(serverImpl, &mcp.ServerOptions{HasTools: true})

	srv.AddTool(&mcp.Tool{
		Name:        "fetch_page",
		Description: "Fetches a web page and returns its visible text content.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "URL of the page to fetch.",
				},
			},
			"required": []string{"url"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			URL string `json:"url"`
		}
		if err := server.DecodeArgs(req, &args); err != nil {
			return server.Errorf("decode arguments: %v", err), nil
		}
		if reason := validateURL(args.URL); reason != "" {
			return server.Errorf("invalid url: %s", reason), nil
		}

		text, err := fetchPage(ctx, client, args.URL)
		if err != nil {
			log.Warn("fetch failed", zap.String("url", args.URL), zap.Error(err))
			return server.Errorf("fetch %s: %v", args.URL, err), nil
		}
		return server.Text(text), nil
	})

	return srv
}

func validateURL(raw string) string {
	if raw == "" {
		return "url is required"
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err.Error()
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "scheme must be http or https"
	}
	if parsed.Host == "" {
		return "host is required"
	}
	return ""
}

func fetchPage(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return extractText(body), nil
}
