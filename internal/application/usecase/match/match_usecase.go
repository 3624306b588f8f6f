package match

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/internal/domain/match"
	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/logger"
)

var tracer = otel.Tracer("match_usecase")

type MatchUseCase struct {
	store  user.Store
	cfg    match.Config
	logger logger.Logger
}

func NewMatchUseCase(store user.Store, cfg match.Config, log logger.Logger) *MatchUseCase {
	return &MatchUseCase{store: store, cfg: cfg, logger: log}
}

// FindMatches returns up to match.TopMatches profiles from the subject's
// city and age window, best shared interests first. With no such profile
// it falls back to the first MatchLimit other profiles, unscored.
func (uc *MatchUseCase) FindMatches(ctx context.Context, userID int64) ([]*user.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "FindMatches")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userID))

	var (
		result   []*user.UserProfile
		fallback bool
	)
	err := uc.store.WithSession(ctx, func(repo user.Repository) error {
		subject, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		pool, err := repo.ListCandidates(ctx, subject, uc.cfg.AgeLimit)
		if err != nil {
			return err
		}

		if len(pool) == 0 {
			fallback = true
			result, err = repo.ListOthers(ctx, subject.ID, uc.cfg.MatchLimit)
			return err
		}

		result = match.Rank(subject, pool)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("fallback", fallback), attribute.Int("match_count", len(result)))
	uc.logger.Info("Matches computed",
		zap.Int64("user_id", userID),
		zap.Bool("fallback", fallback),
		zap.Int("match_count", len(result)),
	)
	return result, nil
}
