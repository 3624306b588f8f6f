package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/usermatch/internal/domain/audit"
	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

type postgresAuditRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresAuditRepo(db *pgxpool.Pool, logger logger.Logger) audit.Repository {
	return &postgresAuditRepo{db: db, logger: logger}
}

func (r *postgresAuditRepo) Append(ctx context.Context, e *audit.Entry) (bool, error) {
	query := `
		INSERT INTO user_profile_events (event_id, event_type, user_id, version, occurred_at, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id
	`
	rows, err := r.db.Query(ctx, query, e.EventID, e.EventType, e.UserID, e.Version, e.OccurredAt, e.RecordedAt)
	if err != nil {
		return false, apperror.NewInternal("failed to append user event", err)
	}
	defer rows.Close()

	written := false
	for rows.Next() {
		if err := rows.Scan(&e.ID); err != nil {
			return false, apperror.NewInternal("failed to scan user event id", err)
		}
		written = true
	}
	if err := rows.Err(); err != nil {
		return false, apperror.NewInternal("failed to append user event", err)
	}
	return written, nil
}
