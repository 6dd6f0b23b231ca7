package postgres

import (
	"context"
	"database/sql"

	"hrdocs/internal/model"
	"hrdocs/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
// It uses database/sql with parameterized queries.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Record inserts one audit event row.
func (r *AuditPostgres) Record(ctx context.Context, event *model.AuditEvent) error {
	const q = `
		INSERT INTO audit_events (id, actor, action, document_name, size, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		event.ID,
		event.Actor,
		event.Action,
		event.DocumentName,
		event.Size,
		event.RequestID,
		event.OccurredAt,
	)
	return err
}

// List returns audit events using LIMIT/OFFSET pagination and a total count.
func (r *AuditPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.AuditEvent], error) {
	const qCount = `SELECT COUNT(*) FROM audit_events`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, actor, action, document_name, size, request_id, occurred_at
		FROM audit_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditEvent, 0)
	for rows.Next() {
		var e model.AuditEvent
		if err := rows.Scan(
			&e.ID,
			&e.Actor,
			&e.Action,
			&e.DocumentName,
			&e.Size,
			&e.RequestID,
			&e.OccurredAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.AuditEvent]{
		Items: items,
		Total: total,
	}, nil
}
