package http

import (
	"github.com/khoahotran/usermatch/internal/domain/user"
)

// User DTOs

type CreateUserRequest struct {
	Name      string   `json:"name" binding:"required"`
	Age       *int     `json:"age" binding:"required"`
	Gender    string   `json:"gender" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	City      string   `json:"city" binding:"required"`
	Interests []string `json:"interests" binding:"required"`
}

// UpdateUserRequest holds the mutable fields; absent or null means unchanged.
type UpdateUserRequest struct {
	Name      *string   `json:"name"`
	Age       *int      `json:"age"`
	Gender    *string   `json:"gender"`
	Email     *string   `json:"email" binding:"omitempty,email"`
	City      *string   `json:"city"`
	Interests *[]string `json:"interests"`
}

func (r *UpdateUserRequest) ToDomainPatch() user.Patch {
	return user.Patch{
		Name:      r.Name,
		Age:       r.Age,
		Gender:    r.Gender,
		Email:     r.Email,
		City:      r.City,
		Interests: r.Interests,
	}
}

type UserDTO struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Email     string   `json:"email"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
	Version   int      `json:"version"`
}

func ToUserDTO(u *user.UserProfile) UserDTO {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Age:       u.Age,
		Gender:    u.Gender,
		Email:     u.Email,
		City:      u.City,
		Interests: interests,
		Version:   u.Version,
	}
}

func ToUserDTOs(users []*user.UserProfile) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	return dtos
}

type MessageResponse struct {
	Message string `json:"message"`
}
