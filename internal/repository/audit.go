package repository

import (
	"context"

	"hrdocs/internal/model"
)

// AuditRepository persists the append-only trail of document operations.
// No business logic here — strictly persistence operations.
type AuditRepository interface {
	// Record inserts a new audit event. Events are never updated or deleted
	// by the application.
	Record(ctx context.Context, event *model.AuditEvent) error

	// List returns a paginated slice of audit events, newest first, and the
	// total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.AuditEvent], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
