package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UserProfile is the only persisted entity. Version is the optimistic
// concurrency token: 1 on create, +1 on every applied update.
type UserProfile struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name" validate:"required"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	City      string   `json:"city" validate:"required"`
	Interests []string `json:"interests"`
	Version   int      `json:"version"`
}

// Patch carries the fields of a partial update. Nil means "not supplied".
type Patch struct {
	Name      *string
	Age       *int
	Gender    *string
	Email     *string
	City      *string
	Interests *[]string
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidEmail = errors.New("email is not a valid address")
)

var validate = validator.New()

func (u *UserProfile) Validate() error {
	if err := validate.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return describe(verrs)
		}
		return err
	}
	return nil
}

func (p Patch) Validate() error {
	required := []struct {
		field string
		value *string
	}{
		{"name", p.Name},
		{"gender", p.Gender},
		{"city", p.City},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return fmt.Errorf("%s must not be empty", r.field)
		}
	}
	if p.Email != nil {
		if err := validate.Var(*p.Email, "required,email"); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}

// Apply copies every supplied field onto u. Version is left alone.
func (p Patch) Apply(u *UserProfile) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Interests != nil {
		u.Interests = append([]string(nil), (*p.Interests)...)
	}
}

func describe(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "email":
			msgs = append(msgs, ErrInvalidEmail.Error())
		case "required":
			msgs = append(msgs, field+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// EncodeInterests serializes interests into the JSON text stored in the
// interests column. A nil list is stored as "[]".
func EncodeInterests(interests []string) (string, error) {
	if interests == nil {
		interests = []string{}
	}
	b, err := json.Marshal(interests)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeInterests(raw string) ([]string, error) {
	interests := []string{}
	if strings.TrimSpace(raw) == "" {
		return interests, nil
	}
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return []string{}, err
	}
	if interests == nil {
		interests = []string{}
	}
	return interests, nil
}

type Repository interface {
	Create(ctx context.Context, u *UserProfile) error
	FindByID(ctx context.Context, id int64) (*UserProfile, error)
	List(ctx context.Context, offset, limit int) ([]*UserProfile, error)
	// UpdateVersioned applies patch and bumps the version only if the row
	// still has expectedVersion. It reports whether a row was written.
	UpdateVersioned(ctx context.Context, id int64, patch Patch, expectedVersion int) (bool, error)
	// DeleteVersioned removes the row only if it still has expectedVersion.
	DeleteVersioned(ctx context.Context, id int64, expectedVersion int) (bool, error)
	// ListCandidates returns the other profiles in subject's city whose age
	// is within ageLimit of subject's, ordered by id.
	ListCandidates(ctx context.Context, subject *UserProfile, ageLimit int) ([]*UserProfile, error)
	// ListOthers returns up to limit profiles other than excludeID, ordered by id.
	ListOthers(ctx context.Context, excludeID int64, limit int) ([]*UserProfile, error)
}

// Store hands out a Repository bound to one storage session. The session
// is released when fn returns, on every path.
type Store interface {
	WithSession(ctx context.Context, fn func(repo Repository) error) error
}
