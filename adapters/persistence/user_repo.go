package persistence

import (
	"context"
	"errors"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

var psqlUser = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{"id", "name", "age", "gender", "email", "city", "interests", "version"}

type postgresUserStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewPostgresUserStore returns a user.Store that binds each session to one
// pooled connection.
func NewPostgresUserStore(pool *pgxpool.Pool, logger logger.Logger) user.Store {
	return &postgresUserStore{pool: pool, logger: logger}
}

func (s *postgresUserStore) WithSession(ctx context.Context, fn func(repo user.Repository) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return apperror.NewInternal("failed to acquire database connection", err)
	}
	defer conn.Release()

	return fn(&postgresUserRepo{db: conn, logger: s.logger})
}

type postgresUserRepo struct {
	db     querier
	logger logger.Logger
}

// NewPostgresUserRepo returns a repository running every statement on the pool.
func NewPostgresUserRepo(db *pgxpool.Pool, logger logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: logger}
}

func scanUser(row pgx.Row, l logger.Logger) (*user.UserProfile, error) {
	u := &user.UserProfile{}
	var interests string

	err := row.Scan(&u.ID, &u.Name, &u.Age, &u.Gender, &u.Email, &u.City, &interests, &u.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to scan user row", err)
	}

	u.Interests, err = user.DecodeInterests(interests)
	if err != nil {
		l.Error("Failed to decode user interests", err, zap.Int64("user_id", u.ID))
		return nil, apperror.NewInternal("failed to decode user interests", err)
	}
	return u, nil
}

func scanUsers(rows pgx.Rows, l logger.Logger) ([]*user.UserProfile, error) {
	defer rows.Close()
	users := make([]*user.UserProfile, 0)
	for rows.Next() {
		u, err := scanUser(rows, l)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating user rows", err)
	}
	return users, nil
}

func (r *postgresUserRepo) queryUsers(ctx context.Context, b sq.SelectBuilder, op string) ([]*user.UserProfile, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build "+op+" query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to "+op, err)
	}
	return scanUsers(rows, r.logger)
}

func (r *postgresUserRepo) Create(ctx context.Context, u *user.UserProfile) error {
	interests, err := user.EncodeInterests(u.Interests)
	if err != nil {
		return apperror.NewInternal("failed to encode user interests", err)
	}

	query := `
		INSERT INTO user_profiles (name, age, gender, email, city, interests, version)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		RETURNING id, version
	`
	err = r.db.QueryRow(ctx, query, u.Name, u.Age, u.Gender, u.Email, u.City, interests).Scan(&u.ID, &u.Version)
	if err != nil {
		return apperror.NewInternal("failed to create user", err)
	}
	return nil
}

func (r *postgresUserRepo) FindByID(ctx context.Context, id int64) (*user.UserProfile, error) {
	sql, args, err := psqlUser.Select(userColumns...).From("user_profiles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find user query", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, sql, args...), r.logger)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, apperror.NewNotFound("user", strconv.FormatInt(id, 10))
	}
	return u, err
}

func (r *postgresUserRepo) List(ctx context.Context, offset, limit int) ([]*user.UserProfile, error) {
	builder := psqlUser.Select(userColumns...).
		From("user_profiles").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	return r.queryUsers(ctx, builder, "list users")
}

func (r *postgresUserRepo) UpdateVersioned(ctx context.Context, id int64, patch user.Patch, expectedVersion int) (bool, error) {
	builder := psqlUser.Update("user_profiles").
		Set("version", expectedVersion+1).
		Where(sq.Eq{"id": id, "version": expectedVersion})

	if patch.Name != nil {
		builder = builder.Set("name", *patch.Name)
	}
	if patch.Age != nil {
		builder = builder.Set("age", *patch.Age)
	}
	if patch.Gender != nil {
		builder = builder.Set("gender", *patch.Gender)
	}
	if patch.Email != nil {
		builder = builder.Set("email", *patch.Email)
	}
	if patch.City != nil {
		builder = builder.Set("city", *patch.City)
	}
	if patch.Interests != nil {
		interests, err := user.EncodeInterests(*patch.Interests)
		if err != nil {
			return false, apperror.NewInternal("failed to encode user interests", err)
		}
		builder = builder.Set("interests", interests)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return false, apperror.NewInternal("failed to build update user query", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, apperror.NewInternal("failed to update user", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (r *postgresUserRepo) DeleteVersioned(ctx context.Context, id int64, expectedVersion int) (bool, error) {
	query := `DELETE FROM user_profiles WHERE id = $1 AND version = $2`
	cmdTag, err := r.db.Exec(ctx, query, id, expectedVersion)
	if err != nil {
		return false, apperror.NewInternal("failed to delete user", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (r *postgresUserRepo) ListCandidates(ctx context.Context, subject *user.UserProfile, ageLimit int) ([]*user.UserProfile, error) {
	builder := psqlUser.Select(userColumns...).
		From("user_profiles").
		Where(sq.NotEq{"id": subject.ID}).
		Where(sq.Eq{"city": subject.City}).
		Where("age BETWEEN ? AND ?", subject.Age-ageLimit, subject.Age+ageLimit).
		OrderBy("id ASC")
	return r.queryUsers(ctx, builder, "list match candidates")
}

func (r *postgresUserRepo) ListOthers(ctx context.Context, excludeID int64, limit int) ([]*user.UserProfile, error) {
	builder := psqlUser.Select(userColumns...).
		From("user_profiles").
		Where(sq.NotEq{"id": excludeID}).
		OrderBy("id ASC").
		Limit(uint64(limit))
	return r.queryUsers(ctx, builder, "list other users")
}
