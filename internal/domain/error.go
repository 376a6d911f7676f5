package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeConnection     ErrorCode = "CONNECTION"
	CodeProtocol       ErrorCode = "PROTOCOL"
	CodeInvocation     ErrorCode = "INVOCATION"
	CodeArgumentDecode ErrorCode = "ARGUMENT_DECODE"
	CodeToolNotFound   ErrorCode = "TOOL_NOT_FOUND"
	CodeDuplicateTool  ErrorCode = "DUPLICATE_TOOL"
	CodeTimeout        ErrorCode = "TIMEOUT"
	CodeNoServers      ErrorCode = "NO_SERVERS"
)

// Error is the structured failure type used across the registry. Op names
// the failing operation, Meta carries context such as the tool or server
// name involved.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
			Meta:    existing.Meta,
		}
	}
	return E(code, op, "", err)
}

// CodeFrom resolves the error code for an arbitrary error, mapping
// sentinels and context errors onto the taxonomy.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrToolNotFound):
		return CodeToolNotFound, true
	case errors.Is(err, ErrDuplicateTool):
		return CodeDuplicateTool, true
	case errors.Is(err, ErrNoServersAvailable):
		return CodeNoServers, true
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout, true
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrConnectionClosed):
		return CodeConnection, true
	default:
		return "", false
	}
}
