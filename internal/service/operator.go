package service

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"
)

// Operator identifies who triggered an operation and under which request.
// It rides the context from the HTTP layer into audit records.
type Operator struct {
	Actor     string
	RequestID string
}

type operatorKey struct{}

// WithOperator returns a context carrying the operator identity.
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFromContext returns the operator stored by WithOperator, or a
// zero Operator when none is present.
func OperatorFromContext(ctx context.Context) Operator {
	if op, ok := ctx.Value(operatorKey{}).(Operator); ok {
		return op
	}
	return Operator{}
}

// auditLogOutput is swappable so tests can capture audit failure logs.
var auditLogOutput io.Writer = os.Stdout

func logAuditFailure(action, name string, err error) {
	_ = json.NewEncoder(auditLogOutput).Encode(map[string]any{
		"ts":            time.Now().UTC().Format(time.RFC3339Nano),
		"level":         "error",
		"msg":           "audit_record_failed",
		"action":        action,
		"document_name": name,
		"error":         err.Error(),
	})
}
