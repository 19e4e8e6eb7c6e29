package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/model/response"
	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/dinerozz/nudge-engine/internal/service/ledger"
	"github.com/dinerozz/nudge-engine/middleware"
	"github.com/gin-gonic/gin"
)

type LedgerService interface {
	LogAction(ctx context.Context, userID string, req entity.LogActionRequest) (entity.UserAction, error)
	Actions(ctx context.Context, userID string, kind entity.ActionKind) []entity.UserAction
	AnalyticsData(ctx context.Context, userID string, days int) entity.AnalyticsData
	StreakData(ctx context.Context, userID string) entity.StreakData
	IntegrityScore(ctx context.Context, userID string) entity.IntegrityScore
	Achievements(ctx context.Context, userID string) []entity.Achievement
}

type LedgerHandler struct {
	service LedgerService
}

func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// LogAction godoc
// @Summary      Record a user action
// @Tags         /api/v1/actions
// @Accept       json
// @Produce      json
// @Param        action  body      entity.LogActionRequest  true  "Action"
// @Success      201     {object}  wrapper.ResponseWrapper{data=entity.UserAction}
// @Failure      400     {object}  wrapper.ErrorWrapper
// @Router       /actions [post]
func (h *LedgerHandler) LogAction(c *gin.Context) {
	var req entity.LogActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	action, err := h.service.LogAction(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrUnknownAction) || errors.Is(err, ledger.ErrMissingUser) {
			status = http.StatusBadRequest
		}
		c.JSON(status, wrapper.ErrorWrapper{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{
		Data:    action,
		Success: true,
	})
}

// GetActions godoc
// @Summary      List recorded actions
// @Description  Newest first, optionally filtered by kind
// @Tags         /api/v1/actions
// @Produce      json
// @Param        action    query     string  false  "Action kind"
// @Param        page      query     int     false  "Page, from 1"
// @Param        per_page  query     int     false  "Items per page"
// @Success      200       {object}  wrapper.PaginatedResponseWrapper{data=[]entity.UserAction}
// @Failure      400       {object}  wrapper.ErrorWrapper
// @Router       /actions [get]
func (h *LedgerHandler) GetActions(c *gin.Context) {
	kind := entity.ActionKind(c.Query("action"))
	if kind != "" && !kind.Valid() {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: ledger.ErrUnknownAction.Error()})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid page"})
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(response.DefaultPerPage)))
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid per_page"})
		return
	}

	actions := h.service.Actions(c.Request.Context(), middleware.UserID(c), kind)
	meta, from, to := response.NewPaginationMeta(page, perPage, len(actions))

	c.JSON(http.StatusOK, wrapper.PaginatedResponseWrapper{
		Data:    actions[from:to],
		Meta:    meta,
		Success: true,
	})
}

// GetAnalytics godoc
// @Summary      Action analytics
// @Tags         /api/v1/actions
// @Produce      json
// @Param        days  query     int  false  "Look-back in days (default 7)"
// @Success      200   {object}  wrapper.ResponseWrapper{data=entity.AnalyticsData}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Router       /actions/analytics [get]
func (h *LedgerHandler) GetAnalytics(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "days must be a positive integer"})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.AnalyticsData(c.Request.Context(), middleware.UserID(c), days),
		Success: true,
	})
}

// GetStreak godoc
// @Summary      Completion streak
// @Tags         /api/v1/actions
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.StreakData}
// @Router       /actions/streak [get]
func (h *LedgerHandler) GetStreak(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.StreakData(c.Request.Context(), middleware.UserID(c)),
		Success: true,
	})
}

// GetIntegrity godoc
// @Summary      Integrity score
// @Tags         /api/v1/actions
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.IntegrityScore}
// @Router       /actions/integrity [get]
func (h *LedgerHandler) GetIntegrity(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.IntegrityScore(c.Request.Context(), middleware.UserID(c)),
		Success: true,
	})
}

// GetAchievements godoc
// @Summary      Achievements
// @Tags         /api/v1/actions
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.Achievement}
// @Router       /actions/achievements [get]
func (h *LedgerHandler) GetAchievements(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.Achievements(c.Request.Context(), middleware.UserID(c)),
		Success: true,
	})
}
