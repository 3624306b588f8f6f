package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	userUC "github.com/khoahotran/usermatch/internal/application/usecase/user"
	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

type UserHandler struct {
	useCase *userUC.UserUseCase
	logger  logger.Logger
}

func NewUserHandler(uc *userUC.UserUseCase, log logger.Logger) *UserHandler {
	return &UserHandler{useCase: uc, logger: log}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	input := userUC.CreateUserInput{
		Name:      req.Name,
		Age:       *req.Age,
		Gender:    req.Gender,
		Email:     req.Email,
		City:      req.City,
		Interests: req.Interests,
	}
	u, err := h.useCase.CreateUser(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToUserDTO(u))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("'skip' must be an integer", err))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(userUC.DefaultListLimit)))
	if err != nil {
		c.Error(apperror.NewInvalidInput("'limit' must be an integer", err))
		return
	}

	users, err := h.useCase.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTOs(users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	u, err := h.useCase.GetUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTO(u))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	expected, err := parseIfMatch(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	u, err := h.useCase.UpdateUser(c.Request.Context(), userUC.UpdateUserInput{
		ID:              id,
		Patch:           req.ToDomainPatch(),
		ExpectedVersion: expected,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTO(u))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	expected, err := parseIfMatch(c)
	if err != nil {
		c.Error(err)
		return
	}

	err = h.useCase.DeleteUser(c.Request.Context(), userUC.DeleteUserInput{ID: id, ExpectedVersion: expected})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("User with id %d deleted successfully", id)})
}

func parseUserID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewInvalidInput("user id must be an integer", err)
	}
	return id, nil
}

// parseIfMatch reads an optional If-Match header carrying the version the
// client last saw, e.g. `If-Match: "3"`.
func parseIfMatch(c *gin.Context) (*int, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(raw, "W/"), `"`))
	if err != nil || v < 1 {
		return nil, apperror.NewInvalidInput("If-Match must carry a positive version number", err)
	}
	return &v, nil
}

func bindingError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, field+" is required")
			case "email":
				msgs = append(msgs, field+" is not a valid email address")
			default:
				msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
			}
		}
		return apperror.NewValidation(strings.Join(msgs, "; "), err)
	}
	return apperror.NewInvalidInput("invalid JSON body", err)
}
