package domain

import "time"

// DispatchStatus labels the outcome of a dispatched tool call.
type DispatchStatus string

const (
	DispatchStatusSuccess DispatchStatus = "success"
	DispatchStatusError   DispatchStatus = "error"
)

// DispatchMetric captures metrics for one dispatched tool call.
type DispatchMetric struct {
	Tool     string
	Server   string
	Status   DispatchStatus
	Code     ErrorCode
	Duration time.Duration
}

// Metrics records operational metrics for connections, dispatch, and the
// classification oracle.
type Metrics interface {
	ObserveDispatch(metric DispatchMetric)
	ObserveConnect(server string, duration time.Duration, err error)
	ObserveOracleLatency(provider, model string, duration time.Duration)
	ObserveOracleTokens(provider, model string, tokens int)
}
