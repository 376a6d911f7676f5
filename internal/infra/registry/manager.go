package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"agenthub/internal/domain"
	"agenthub/internal/infra/telemetry"
	"agenthub/internal/infra/transport"
)

// Manager owns the set of server connections, the aggregated tool
// catalog, and the name-to-connection routing index. The index is rebuilt
// from scratch on every ConnectAll and swapped atomically, so dispatch
// never observes a half-built index.
type Manager struct {
	newClient func(domain.ServerSpec) domain.ToolClient
	timeout   time.Duration
	logger    *zap.Logger
	metrics   domain.Metrics

	mu    sync.Mutex
	specs []domain.ServerSpec
	conns []domain.ToolClient

	index atomic.Pointer[routingIndex]
}

type routingIndex struct {
	byName     map[string]domain.ToolClient
	owners     map[string]string
	tools      []domain.ToolDescriptor
	duplicates []*domain.Error
}

var emptyIndex = &routingIndex{byName: map[string]domain.ToolClient{}, owners: map[string]string{}}

type ManagerOptions struct {
	// NewClient builds a connection for one spec. Defaults to a
	// streamable HTTP connection.
	NewClient func(domain.ServerSpec) domain.ToolClient
	// CallTimeout bounds every dispatched invocation.
	CallTimeout time.Duration
	Logger      *zap.Logger
	Metrics     domain.Metrics
}

func NewManager(opts ManagerOptions) *Manager {
	newClient := opts.NewClient
	if newClient == nil {
		newClient = func(spec domain.ServerSpec) domain.ToolClient {
			return transport.NewConnection(spec, transport.ConnectionOptions{Logger: opts.Logger})
		}
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultCallTimeoutSeconds) * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	m := &Manager{
		newClient: newClient,
		timeout:   timeout,
		logger:    logger.Named("registry"),
		metrics:   metrics,
	}
	m.index.Store(emptyIndex)
	return m
}

// LoadServers validates and stores the server list, replacing any prior
// list. Malformed descriptors are skipped and logged, never fatal.
func (m *Manager) LoadServers(specs []domain.ServerSpec) {
	valid := make([]domain.ServerSpec, 0, len(specs))
	for i, spec := range specs {
		if spec.Name == "" || spec.Endpoint == "" || spec.APIKey == "" {
			m.logger.Warn("skipping malformed server descriptor",
				zap.Int("index", i), telemetry.ServerField(spec.Name))
			continue
		}
		valid = append(valid, spec)
	}

	m.mu.Lock()
	m.specs = valid
	m.mu.Unlock()
}

// ConnectAll opens every configured connection concurrently, collects
// each server's catalog, and rebuilds the routing index. A single
// server's failure is isolated; ErrNoServersAvailable is returned only
// when nothing was configured or every connection failed.
func (m *Manager) ConnectAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeAllLocked()

	if len(m.specs) == 0 {
		return domain.E(domain.CodeNoServers, "registry.connect_all", "server list is empty", domain.ErrNoServersAvailable)
	}

	type outcome struct {
		client domain.ToolClient
		err    error
	}
	outcomes := make([]outcome, len(m.specs))

	var wg sync.WaitGroup
	for i, spec := range m.specs {
		wg.Add(1)
		go func(i int, spec domain.ServerSpec) {
			defer wg.Done()
			client := m.newClient(spec)
			started := time.Now()
			err := client.Open(ctx)
			m.metrics.ObserveConnect(spec.Name, time.Since(started), err)
			if err != nil {
				m.logger.Warn("server connection failed",
					telemetry.EventField(telemetry.EventConnectFailure),
					telemetry.ServerField(spec.Name),
					telemetry.DurationField(time.Since(started)),
					zap.Error(err),
				)
				outcomes[i] = outcome{err: err}
				return
			}
			m.logger.Info("server connected",
				telemetry.EventField(telemetry.EventConnectSuccess),
				telemetry.ServerField(spec.Name),
				zap.Int("tools", len(client.Tools())),
			)
			outcomes[i] = outcome{client: client}
		}(i, spec)
	}
	wg.Wait()

	// Merge catalogs in descriptor order so the collision policy is
	// deterministic: first-registered wins.
	next := &routingIndex{
		byName: make(map[string]domain.ToolClient),
		owners: make(map[string]string),
	}
	conns := make([]domain.ToolClient, 0, len(outcomes))
	for _, out := range outcomes {
		if out.client == nil {
			continue
		}
		conns = append(conns, out.client)
		for _, tool := range out.client.Tools() {
			if owner, exists := next.owners[tool.Name]; exists {
				dup := &domain.Error{
					Code:    domain.CodeDuplicateTool,
					Op:      "registry.connect_all",
					Message: fmt.Sprintf("tool %q from server %q shadowed by server %q", tool.Name, out.client.Name(), owner),
					Cause:   domain.ErrDuplicateTool,
					Meta:    map[string]string{"tool": tool.Name, "server": out.client.Name(), "owner": owner},
				}
				next.duplicates = append(next.duplicates, dup)
				m.logger.Warn("duplicate tool name rejected",
					telemetry.EventField(telemetry.EventDuplicateTool),
					telemetry.ToolField(tool.Name),
					telemetry.ServerField(out.client.Name()),
					zap.String("owner", owner),
				)
				continue
			}
			next.byName[tool.Name] = out.client
			next.owners[tool.Name] = out.client.Name()
			next.tools = append(next.tools, tool)
		}
	}

	if len(conns) == 0 {
		m.index.Store(emptyIndex)
		return domain.E(domain.CodeNoServers, "registry.connect_all",
			fmt.Sprintf("all %d servers failed to connect", len(m.specs)), domain.ErrNoServersAvailable)
	}

	m.conns = conns
	m.index.Store(next)
	return nil
}

// Dispatch forwards each request to the connection owning its tool and
// returns results in input order. Per-request failures (unknown tool,
// malformed arguments, invocation errors, timeouts) are reported as
// result items and never abort the batch.
func (m *Manager) Dispatch(ctx context.Context, calls []domain.ToolCall) []domain.CallResult {
	idx := m.index.Load()

	results := make([]domain.CallResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call domain.ToolCall) {
			defer wg.Done()
			results[i] = m.dispatchOne(ctx, idx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (m *Manager) dispatchOne(ctx context.Context, idx *routingIndex, call domain.ToolCall) domain.CallResult {
	result := domain.CallResult{ID: call.ID, Tool: call.Name}

	if len(call.Arguments) > 0 && !json.Valid(call.Arguments) {
		result.Err = &domain.Error{
			Code:    domain.CodeArgumentDecode,
			Op:      "registry.dispatch",
			Message: fmt.Sprintf("invalid arguments for tool %q", call.Name),
			Meta:    map[string]string{"tool": call.Name},
		}
		m.observeDispatch(call.Name, "", 0, result.Err)
		return result
	}

	client, ok := idx.byName[call.Name]
	if !ok {
		result.Err = &domain.Error{
			Code:    domain.CodeToolNotFound,
			Op:      "registry.dispatch",
			Message: fmt.Sprintf("tool %q is not registered", call.Name),
			Cause:   domain.ErrToolNotFound,
			Meta:    map[string]string{"tool": call.Name},
		}
		m.observeDispatch(call.Name, "", 0, result.Err)
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	started := time.Now()
	value, err := client.Invoke(callCtx, call.Name, call.Arguments)
	m.observeDispatch(call.Name, client.Name(), time.Since(started), err)
	if err != nil {
		m.logger.Warn("tool invocation failed",
			telemetry.EventField(telemetry.EventDispatchError),
			telemetry.ToolField(call.Name),
			telemetry.ServerField(client.Name()),
			telemetry.DurationField(time.Since(started)),
			zap.Error(err),
		)
		result.Err = err
		return result
	}

	result.OK = true
	result.Value = value
	return result
}

func (m *Manager) observeDispatch(tool, server string, duration time.Duration, err error) {
	status := domain.DispatchStatusSuccess
	var code domain.ErrorCode
	if err != nil {
		status = domain.DispatchStatusError
		code, _ = domain.CodeFrom(err)
	}
	m.metrics.ObserveDispatch(domain.DispatchMetric{
		Tool:     tool,
		Server:   server,
		Status:   status,
		Code:     code,
		Duration: duration,
	})
}

// Tools returns the merged catalog snapshot.
func (m *Manager) Tools() []domain.ToolDescriptor {
	idx := m.index.Load()
	out := make([]domain.ToolDescriptor, len(idx.tools))
	copy(out, idx.tools)
	return out
}

// Duplicates returns the collisions recorded during the last ConnectAll.
func (m *Manager) Duplicates() []*domain.Error {
	idx := m.index.Load()
	out := make([]*domain.Error, len(idx.duplicates))
	copy(out, idx.duplicates)
	return out
}

// CloseAll closes every connection in reverse-of-open order, continuing
// past individual failures. It is idempotent and safe to invoke while a
// dispatch is in flight: in-flight invocations fail over to per-item
// errors instead of blocking teardown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAllLocked()
}

func (m *Manager) closeAllLocked() {
	for i := len(m.conns) - 1; i >= 0; i-- {
		conn := m.conns[i]
		if err := conn.Close(); err != nil {
			m.logger.Warn("connection close failed",
				telemetry.EventField(telemetry.EventCloseFailure),
				telemetry.ServerField(conn.Name()),
				zap.Error(err),
			)
		}
	}
	m.conns = nil
	m.index.Store(emptyIndex)
}
