package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldServer     = "server"
	FieldTool       = "tool"
	FieldIntent     = "intent"
	FieldState      = "state"
	FieldDurationMs = "duration_ms"
)

const (
	EventConnectAttempt   = "connect_attempt"
	EventConnectSuccess   = "connect_success"
	EventConnectFailure   = "connect_failure"
	EventDispatchError    = "dispatch_error"
	EventDuplicateTool    = "duplicate_tool"
	EventCloseFailure     = "close_failure"
	EventClassifyFallback = "classify_fallback"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ServerField(server string) zap.Field {
	return zap.String(FieldServer, server)
}

func ToolField(tool string) zap.Field {
	return zap.String(FieldTool, tool)
}

func IntentField(intent string) zap.Field {
	return zap.String(FieldIntent, intent)
}

func StateField(state string) zap.Field {
	return zap.String(FieldState, state)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}
