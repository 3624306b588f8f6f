package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/usermatch/adapters/event"
	matchUC "github.com/khoahotran/usermatch/internal/application/usecase/match"
	userUC "github.com/khoahotran/usermatch/internal/application/usecase/user"
	"github.com/khoahotran/usermatch/internal/domain/match"
	"github.com/khoahotran/usermatch/internal/domain/user/usertest"
	"github.com/khoahotran/usermatch/pkg/logger"
)

type UserHandlerTestSuite struct {
	suite.Suite
	store  *usertest.MemoryStore
	router *gin.Engine
}

func (s *UserHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	s.store = usertest.NewMemoryStore()

	users := userUC.NewUserUseCase(s.store, event.NopPublisher{}, log)
	matches := matchUC.NewMatchUseCase(s.store, match.DefaultConfig(), log)

	s.router = NewRouter(RouterDeps{
		UserHandler:  NewUserHandler(users, log),
		MatchHandler: NewMatchHandler(matches, log),
		Logger:       log,
	})
}

func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}

func (s *UserHandlerTestSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(b))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *UserHandlerTestSuite) createUser(name string, age int, city string, interests ...string) UserDTO {
	if interests == nil {
		interests = []string{}
	}
	w := s.do(http.MethodPost, "/users/", gin.H{
		"name":      name,
		"age":       age,
		"gender":    "female",
		"email":     name + "@example.com",
		"city":      city,
		"interests": interests,
	}, nil)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var dto UserDTO
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &dto))
	return dto
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *UserHandlerTestSuite) TestPing() {
	w := s.do(http.MethodGet, "/ping", nil, nil)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"ping":"pong!"}`, w.Body.String())
}

func (s *UserHandlerTestSuite) TestCreateUser() {
	dto := s.createUser("ana", 30, "Hanoi", "music", "chess")

	assert.Equal(s.T(), int64(1), dto.ID)
	assert.Equal(s.T(), 1, dto.Version)
	assert.Equal(s.T(), []string{"music", "chess"}, dto.Interests)
}

func (s *UserHandlerTestSuite) TestCreateUser_InvalidEmail() {
	w := s.do(http.MethodPost, "/users/", gin.H{
		"name": "ana", "age": 30, "gender": "female", "email": "not-an-email",
		"city": "Hanoi", "interests": []string{},
	}, nil)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](s.T(), w)
	assert.Contains(s.T(), body["details"], "email is not a valid email address")
}

func (s *UserHandlerTestSuite) TestCreateUser_MissingField() {
	w := s.do(http.MethodPost, "/users/", gin.H{
		"name": "ana", "gender": "female", "email": "ana@example.com",
		"city": "Hanoi", "interests": []string{},
	}, nil)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](s.T(), w)
	assert.Contains(s.T(), body["details"], "age is required")
}

func (s *UserHandlerTestSuite) TestCreateUser_MalformedJSON() {
	w := s.do(http.MethodPost, "/users/", `{"name": `, nil)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *UserHandlerTestSuite) TestGetUser() {
	created := s.createUser("ana", 30, "Hanoi", "music")

	w := s.do(http.MethodGet, "/users/1", nil, nil)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), created, decode[UserDTO](s.T(), w))
}

func (s *UserHandlerTestSuite) TestGetUser_NotFound() {
	w := s.do(http.MethodGet, "/users/42", nil, nil)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
	body := decode[map[string]any](s.T(), w)
	assert.Equal(s.T(), "user with id: 42 not found", body["details"])
}

func (s *UserHandlerTestSuite) TestGetUser_NonNumericID() {
	w := s.do(http.MethodGet, "/users/abc", nil, nil)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *UserHandlerTestSuite) TestListUsers() {
	for i := 0; i < 12; i++ {
		s.createUser(string(rune('a'+i))+"user", 20+i, "Hanoi")
	}

	w := s.do(http.MethodGet, "/users/", nil, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	page := decode[[]UserDTO](s.T(), w)
	require.Len(s.T(), page, 10)
	assert.Equal(s.T(), int64(1), page[0].ID)

	w = s.do(http.MethodGet, "/users/?skip=10&limit=5", nil, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	page = decode[[]UserDTO](s.T(), w)
	require.Len(s.T(), page, 2)
	assert.Equal(s.T(), int64(11), page[0].ID)
}

func (s *UserHandlerTestSuite) TestListUsers_Empty() {
	w := s.do(http.MethodGet, "/users/", nil, nil)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `[]`, w.Body.String())
}

func (s *UserHandlerTestSuite) TestListUsers_BadQuery() {
	assert.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/users/?skip=x", nil, nil).Code)
	assert.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/users/?limit=-1", nil, nil).Code)
}

func (s *UserHandlerTestSuite) TestUpdateUser() {
	s.createUser("ana", 30, "Hanoi", "music")

	w := s.do(http.MethodPatch, "/users/1", gin.H{"city": "Hue", "interests": []string{"hiking"}}, nil)

	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	dto := decode[UserDTO](s.T(), w)
	assert.Equal(s.T(), "Hue", dto.City)
	assert.Equal(s.T(), "ana", dto.Name)
	assert.Equal(s.T(), []string{"hiking"}, dto.Interests)
	assert.Equal(s.T(), 2, dto.Version)
}

func (s *UserHandlerTestSuite) TestUpdateUser_StaleIfMatchIsNoOp() {
	s.createUser("ana", 30, "Hanoi")
	s.store.Bump(1)

	w := s.do(http.MethodPatch, "/users/1", gin.H{"city": "Hue"}, map[string]string{"If-Match": `"1"`})

	require.Equal(s.T(), http.StatusOK, w.Code)
	dto := decode[UserDTO](s.T(), w)
	assert.Equal(s.T(), "Hanoi", dto.City)
	assert.Equal(s.T(), 2, dto.Version)
}

func (s *UserHandlerTestSuite) TestUpdateUser_BadIfMatch() {
	s.createUser("ana", 30, "Hanoi")

	w := s.do(http.MethodPatch, "/users/1", gin.H{"city": "Hue"}, map[string]string{"If-Match": "zero"})

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *UserHandlerTestSuite) TestUpdateUser_InvalidEmail() {
	s.createUser("ana", 30, "Hanoi")

	w := s.do(http.MethodPatch, "/users/1", gin.H{"email": "nope"}, nil)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
}

func (s *UserHandlerTestSuite) TestUpdateUser_NotFound() {
	w := s.do(http.MethodPatch, "/users/9", gin.H{"city": "Hue"}, nil)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *UserHandlerTestSuite) TestDeleteUser() {
	s.createUser("ana", 30, "Hanoi")

	w := s.do(http.MethodDelete, "/users/1", nil, nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"message":"User with id 1 deleted successfully"}`, w.Body.String())
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodGet, "/users/1", nil, nil).Code)
}

func (s *UserHandlerTestSuite) TestDeleteUser_StaleIfMatch() {
	s.createUser("ana", 30, "Hanoi")
	s.store.Bump(1)

	w := s.do(http.MethodDelete, "/users/1", nil, map[string]string{"If-Match": `W/"1"`})

	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
	body := decode[map[string]any](s.T(), w)
	assert.Equal(s.T(), "Delete failed: user was modified by another request", body["message"])
	assert.Equal(s.T(), http.StatusOK, s.do(http.MethodGet, "/users/1", nil, nil).Code)
}

func (s *UserHandlerTestSuite) TestDeleteUser_NotFound() {
	w := s.do(http.MethodDelete, "/users/7", nil, nil)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *UserHandlerTestSuite) TestFindMatches() {
	s.createUser("ana", 30, "Hanoi", "music", "chess", "go")
	s.createUser("binh", 32, "Hanoi", "music")
	s.createUser("chi", 28, "Hanoi", "music", "chess")
	s.createUser("dung", 31, "Hue", "music", "chess", "go")

	w := s.do(http.MethodGet, "/users/1/matches", nil, nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	got := decode[[]UserDTO](s.T(), w)
	require.Len(s.T(), got, 2)
	assert.Equal(s.T(), "chi", got[0].Name)
	assert.Equal(s.T(), "binh", got[1].Name)
}

func (s *UserHandlerTestSuite) TestFindMatches_Fallback() {
	s.createUser("ana", 30, "Hanoi", "music")
	s.createUser("binh", 70, "Hue", "music")

	w := s.do(http.MethodGet, "/users/1/matches", nil, nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	got := decode[[]UserDTO](s.T(), w)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "binh", got[0].Name)
}

func (s *UserHandlerTestSuite) TestFindMatches_UnknownUser() {
	w := s.do(http.MethodGet, "/users/5/matches", nil, nil)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}
