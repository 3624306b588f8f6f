package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	matchUC "github.com/khoahotran/usermatch/internal/application/usecase/match"
	"github.com/khoahotran/usermatch/pkg/logger"
)

type MatchHandler struct {
	useCase *matchUC.MatchUseCase
	logger  logger.Logger
}

func NewMatchHandler(uc *matchUC.MatchUseCase, log logger.Logger) *MatchHandler {
	return &MatchHandler{useCase: uc, logger: log}
}

func (h *MatchHandler) FindMatches(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	matches, err := h.useCase.FindMatches(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTOs(matches))
}
