package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/dinerozz/nudge-engine/internal/service/insight"
	"github.com/dinerozz/nudge-engine/internal/service/workspace"
	"github.com/dinerozz/nudge-engine/middleware"
	"github.com/gin-gonic/gin"
)

type WorkspaceService interface {
	Get(ctx context.Context, userID string) (*workspace.Workspace, error)
}

type InsightHandler struct {
	workspaces WorkspaceService
}

func NewInsightHandler(workspaces WorkspaceService) *InsightHandler {
	return &InsightHandler{workspaces: workspaces}
}

func (h *InsightHandler) engine(c *gin.Context) (*insight.Engine, bool) {
	ws, err := h.workspaces.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, wrapper.ErrorWrapper{Message: err.Error()})
		return nil, false
	}
	return ws.Insights, true
}

func positiveQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: name + " must be a positive integer"})
		return 0, false
	}
	return n, true
}

// GetContext godoc
// @Summary      Current contextual state
// @Description  Activity, focus, energy and distraction risk over the last half hour
// @Tags         /api/v1/insights
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.ContextualState}
// @Router       /insights/context [get]
func (h *InsightHandler) GetContext(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    engine.CurrentContext(c.Request.Context()),
		Success: true,
	})
}

// GetInsights godoc
// @Summary      Latest insights
// @Tags         /api/v1/insights
// @Produce      json
// @Param        limit  query     int  false  "Max insights (default 10)"
// @Success      200    {object}  wrapper.ResponseWrapper{data=[]entity.PredictiveInsight}
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Router       /insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
	limit, ok := positiveQuery(c, "limit")
	if !ok {
		return
	}
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    engine.LatestInsights(c.Request.Context(), limit),
		Success: true,
	})
}

// GetRecommendations godoc
// @Summary      Active recommendations
// @Tags         /api/v1/insights
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.PersonalizedRecommendation}
// @Router       /insights/recommendations [get]
func (h *InsightHandler) GetRecommendations(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    engine.ActiveRecommendations(c.Request.Context()),
		Success: true,
	})
}

// GetTrends godoc
// @Summary      Productivity trends
// @Tags         /api/v1/insights
// @Produce      json
// @Param        days  query     int  false  "Days (default 7, max 90)"
// @Success      200   {object}  wrapper.ResponseWrapper{data=entity.ProductivityTrends}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Router       /insights/trends [get]
func (h *InsightHandler) GetTrends(c *gin.Context) {
	days, ok := positiveQuery(c, "days")
	if !ok {
		return
	}
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    engine.ProductivityTrends(c.Request.Context(), days),
		Success: true,
	})
}

// Analyze godoc
// @Summary      Run one analysis pass now
// @Tags         /api/v1/insights
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.AnalysisResult}
// @Router       /insights/analyze [post]
func (h *InsightHandler) Analyze(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    engine.Analyze(c.Request.Context()),
		Success: true,
	})
}
