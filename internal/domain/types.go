package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// ServerSpec describes one configured tool server. Specs are loaded once
// from static configuration and are read-only afterwards.
type ServerSpec struct {
	Name     string
	Endpoint string
	APIKey   string
}

// ToolDescriptor describes one remotely callable operation as advertised
// by a tool server. Descriptors are immutable once listed.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema any
}

// ToolCall is a single tool invocation request. It is consumed exactly
// once by the manager and not retained after the matching result.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// CallResult is the normalized outcome of one tool invocation. OK and Err
// are mutually exclusive; results carry the tool name so callers can
// report partial failures without losing the rest of the batch.
type CallResult struct {
	ID    string
	Tool  string
	OK    bool
	Value string
	Err   error
}

// ConnState tracks the lifecycle of a server connection.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateReady        ConnState = "ready"
	StateClosed       ConnState = "closed"
)

var ErrToolNotFound = errors.New("tool not found")
var ErrDuplicateTool = errors.New("duplicate tool name")
var ErrNoServersAvailable = errors.New("no servers available")
var ErrNotConnected = errors.New("connection is not ready")
var ErrConnectionClosed = errors.New("connection closed")

const (
	// DefaultCallTimeoutSeconds bounds every remote tool invocation.
	DefaultCallTimeoutSeconds = 30
	// DefaultConnectTimeoutSeconds bounds opening a single server connection.
	DefaultConnectTimeoutSeconds = 15
	// DefaultObservabilityListenAddress serves prometheus metrics.
	DefaultObservabilityListenAddress = "127.0.0.1:9180"
)

// ToolClient is the capability surface the registry needs from one server
// connection. Provider differences live behind this interface; the
// registry never sees a transport.
type ToolClient interface {
	Name() string
	Open(ctx context.Context) error
	Tools() []ToolDescriptor
	Invoke(ctx context.Context, tool string, args json.RawMessage) (string, error)
	Close() error
}
