package transport

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"agenthub/internal/domain"
)

var clientImpl = &mcp.Implementation{Name: "agenthub", Version: "0.1.0"}

// Connection owns the session lifecycle for one tool server: open, list
// tools, invoke, close. A failed or timed-out invocation leaves the
// connection Ready; only Close releases the session, exactly once.
type Connection struct {
	spec   domain.ServerSpec
	dialer Dialer
	logger *zap.Logger

	mu      sync.Mutex
	state   domain.ConnState
	session *mcp.ClientSession
	tools   []domain.ToolDescriptor
}

type ConnectionOptions struct {
	Dialer Dialer
	Logger *zap.Logger
}

func NewConnection(spec domain.ServerSpec, opts ConnectionOptions) *Connection {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &StreamableHTTPDialer{}
	}
	return &Connection{
		spec:   spec,
		dialer: dialer,
		logger: logger.Named("conn").With(zap.String("server", spec.Name)),
		state:  domain.StateDisconnected,
	}
}

func (c *Connection) Name() string {
	return c.spec.Name
}

func (c *Connection) State() domain.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open dials the server, initializes the session, and fetches the tool
// catalog. On any failure the connection reverts to Disconnected with no
// partial state.
func (c *Connection) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case domain.StateReady:
		return nil
	case domain.StateClosed:
		return domain.E(domain.CodeConnection, "conn.open", "", domain.ErrConnectionClosed)
	}
	c.state = domain.StateConnecting

	wire, err := c.dialer.Dial(ctx, c.spec)
	if err != nil {
		c.state = domain.StateDisconnected
		return domain.E(domain.CodeConnection, "conn.open", "", err)
	}

	client := mcp.NewClient(clientImpl, nil)
	session, err := client.Connect(ctx, wire, nil)
	if err != nil {
		c.state = domain.StateDisconnected
		return domain.E(domain.CodeConnection, "conn.open", "", err)
	}

	tools, err := fetchTools(ctx, session)
	if err != nil {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Warn("close session after failed catalog fetch", zap.Error(closeErr))
		}
		c.state = domain.StateDisconnected
		return err
	}

	c.session = session
	c.tools = tools
	c.state = domain.StateReady
	return nil
}

// RefreshTools re-fetches the catalog from a Ready connection.
func (c *Connection) RefreshTools(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.StateReady {
		c.mu.Unlock()
		return domain.E(domain.CodeConnection, "conn.refresh_tools", "", domain.ErrNotConnected)
	}
	session := c.session
	c.mu.Unlock()

	tools, err := fetchTools(ctx, session)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == domain.StateReady {
		c.tools = tools
	}
	c.mu.Unlock()
	return nil
}

// Tools returns the catalog fetched at open time.
func (c *Connection) Tools() []domain.ToolDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ToolDescriptor, len(c.tools))
	copy(out, c.tools)
	return out
}

// Invoke calls the named tool and normalizes the result into plain text.
// Tool-level error payloads and transport failures both come back as an
// INVOCATION error carrying the tool name; a context deadline maps to
// TIMEOUT.
func (c *Connection) Invoke(ctx context.Context, tool string, args json.RawMessage) (string, error) {
	c.mu.Lock()
	if c.state != domain.StateReady {
		c.mu.Unlock()
		return "", domain.E(domain.CodeConnection, "conn.invoke", "", domain.ErrNotConnected)
	}
	session := c.session
	c.mu.Unlock()

	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", invokeError(domain.CodeTimeout, tool, err)
		}
		return "", invokeError(domain.CodeInvocation, tool, err)
	}

	value, err := normalizeResult(result)
	if err != nil {
		return "", invokeError(domain.CodeInvocation, tool, err)
	}
	if result.IsError {
		return "", &domain.Error{
			Code:    domain.CodeInvocation,
			Op:      "conn.invoke",
			Message: value,
			Meta:    map[string]string{"tool": tool},
		}
	}
	return value, nil
}

// Close releases the session. It is idempotent and safe from any state;
// closing from Disconnected is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := c.session
	c.session = nil
	c.tools = nil
	c.state = domain.StateClosed

	if session == nil {
		return nil
	}
	return session.Close()
}

func fetchTools(ctx context.Context, session *mcp.ClientSession) ([]domain.ToolDescriptor, error) {
	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, domain.E(domain.CodeProtocol, "conn.list_tools", "", err)
	}

	tools := make([]domain.ToolDescriptor, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		if tool == nil || strings.TrimSpace(tool.Name) == "" {
			return nil, domain.E(domain.CodeProtocol, "conn.list_tools", "catalog entry is missing a tool name", nil)
		}
		tools = append(tools, domain.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	return tools, nil
}

func invokeError(code domain.ErrorCode, tool string, cause error) *domain.Error {
	return &domain.Error{
		Code:  code,
		Op:    "conn.invoke",
		Cause: cause,
		Meta:  map[string]string{"tool": tool},
	}
}

// normalizeResult flattens the heterogeneous MCP result shapes into one
// string: text content joined with newlines, falling back to structured
// content rendered as JSON.
func normalizeResult(result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", errors.New("tool returned no result")
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok && text.Text != "" {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n"), nil
	}

	if result.StructuredContent != nil {
		raw, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return "", nil
}

var _ domain.ToolClient = (*Connection)(nil)
