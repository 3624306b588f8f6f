package user

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/internal/application/service"
	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

const (
	DefaultListLimit = 10
	publishTimeout   = 5 * time.Second
)

var tracer = otel.Tracer("user_usecase")

type UserUseCase struct {
	store  user.Store
	events service.EventPublisher
	logger logger.Logger
}

func NewUserUseCase(store user.Store, events service.EventPublisher, log logger.Logger) *UserUseCase {
	return &UserUseCase{store: store, events: events, logger: log}
}

type CreateUserInput struct {
	Name      string
	Age       int
	Gender    string
	Email     string
	City      string
	Interests []string
}

func (uc *UserUseCase) CreateUser(ctx context.Context, in CreateUserInput) (*user.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "CreateUser")
	defer span.End()

	u := &user.UserProfile{
		Name:      in.Name,
		Age:       in.Age,
		Gender:    in.Gender,
		Email:     in.Email,
		City:      in.City,
		Interests: in.Interests,
	}
	if u.Interests == nil {
		u.Interests = []string{}
	}
	if err := u.Validate(); err != nil {
		return nil, apperror.NewValidation(err.Error(), err)
	}

	err := uc.store.WithSession(ctx, func(repo user.Repository) error {
		return repo.Create(ctx, u)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user_id", u.ID))
	uc.publish(user.NewEvent(user.EventCreated, u.ID, u.Version))
	return u, nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, id int64) (*user.UserProfile, error) {
	var u *user.UserProfile
	err := uc.store.WithSession(ctx, func(repo user.Repository) error {
		var err error
		u, err = repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *UserUseCase) ListUsers(ctx context.Context, skip, limit int) ([]*user.UserProfile, error) {
	if skip < 0 || limit < 0 {
		return nil, apperror.NewInvalidInput("skip and limit must not be negative", nil)
	}
	var users []*user.UserProfile
	err := uc.store.WithSession(ctx, func(repo user.Repository) error {
		var err error
		users, err = repo.List(ctx, skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

type UpdateUserInput struct {
	ID    int64
	Patch user.Patch
	// ExpectedVersion pins the version the caller last saw. When nil the
	// current version is read first.
	ExpectedVersion *int
}

// UpdateUser applies the patch only if the row still has the expected
// version. A stale version is not an error: nothing is written and the
// current row is returned, so the caller can compare versions and retry.
func (uc *UserUseCase) UpdateUser(ctx context.Context, in UpdateUserInput) (*user.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", in.ID))

	if err := in.Patch.Validate(); err != nil {
		return nil, apperror.NewValidation(err.Error(), err)
	}

	var (
		updated *user.UserProfile
		applied bool
	)
	err := uc.store.WithSession(ctx, func(repo user.Repository) error {
		current, err := repo.FindByID(ctx, in.ID)
		if err != nil {
			return err
		}

		expected := current.Version
		if in.ExpectedVersion != nil {
			expected = *in.ExpectedVersion
		}

		applied, err = repo.UpdateVersioned(ctx, in.ID, in.Patch, expected)
		if err != nil {
			return err
		}
		if !applied {
			uc.logger.Warn("Stale version, update skipped",
				zap.Int64("user_id", in.ID),
				zap.Int("expected_version", expected),
			)
		}

		updated, err = repo.FindByID(ctx, in.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("applied", applied))
	if applied {
		uc.publish(user.NewEvent(user.EventUpdated, updated.ID, updated.Version))
	}
	return updated, nil
}

type DeleteUserInput struct {
	ID              int64
	ExpectedVersion *int
}

func (uc *UserUseCase) DeleteUser(ctx context.Context, in DeleteUserInput) error {
	ctx, span := tracer.Start(ctx, "DeleteUser")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", in.ID))

	var expected int
	err := uc.store.WithSession(ctx, func(repo user.Repository) error {
		current, err := repo.FindByID(ctx, in.ID)
		if err != nil {
			return err
		}

		expected = current.Version
		if in.ExpectedVersion != nil {
			expected = *in.ExpectedVersion
		}

		deleted, err := repo.DeleteVersioned(ctx, in.ID, expected)
		if err != nil {
			return err
		}
		if !deleted {
			return apperror.NewConflict("user", strconv.FormatInt(in.ID, 10))
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	uc.publish(user.NewEvent(user.EventDeleted, in.ID, expected))
	return nil
}

// publish runs in the background; a lost event never fails the request.
func (uc *UserUseCase) publish(ev user.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.events.PublishUserEvent(ctx, ev); err != nil {
			uc.logger.Error("Failed to publish user event", err,
				zap.String("event_type", string(ev.Type)),
				zap.Int64("user_id", ev.UserID),
			)
		}
	}()
}
