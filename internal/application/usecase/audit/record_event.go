package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/internal/domain/audit"
	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

type RecordEventUseCase struct {
	repo   audit.Repository
	logger logger.Logger
}

func NewRecordEventUseCase(repo audit.Repository, log logger.Logger) *RecordEventUseCase {
	return &RecordEventUseCase{repo: repo, logger: log}
}

// Execute appends ev to the audit trail. Redelivered events are ignored.
func (uc *RecordEventUseCase) Execute(ctx context.Context, ev user.Event) error {
	if ev.ID == uuid.Nil || !ev.Type.Valid() || ev.UserID <= 0 {
		return apperror.NewInvalidInput("malformed user event", nil)
	}

	entry := &audit.Entry{
		EventID:    ev.ID,
		EventType:  string(ev.Type),
		UserID:     ev.UserID,
		Version:    ev.Version,
		OccurredAt: ev.OccurredAt,
		RecordedAt: time.Now().UTC(),
	}

	written, err := uc.repo.Append(ctx, entry)
	if err != nil {
		return err
	}
	if !written {
		uc.logger.Warn("Duplicate user event skipped", zap.String("event_id", ev.ID.String()))
		return nil
	}

	uc.logger.Info("User event recorded",
		zap.String("event_type", entry.EventType),
		zap.Int64("user_id", entry.UserID),
		zap.Int("version", entry.Version),
	)
	return nil
}
