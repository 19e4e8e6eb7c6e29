package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/dinerozz/nudge-engine/internal/service/activity"
	"github.com/dinerozz/nudge-engine/internal/service/workspace"
	"github.com/dinerozz/nudge-engine/middleware"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/gin-gonic/gin"
)

const defaultWindow = 24 * time.Hour

type WorkspaceService interface {
	Get(ctx context.Context, userID string) (*workspace.Workspace, error)
}

type ActivityHandler struct {
	workspaces WorkspaceService
	hub        *activity.IngestHub
	clock      utils.Clock
}

func NewActivityHandler(workspaces WorkspaceService, hub *activity.IngestHub, clock utils.Clock) *ActivityHandler {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &ActivityHandler{
		workspaces: workspaces,
		hub:        hub,
		clock:      clock,
	}
}

type IngestResult struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

func (h *ActivityHandler) collector(c *gin.Context) (*activity.Collector, bool) {
	ws, err := h.workspaces.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, wrapper.ErrorWrapper{Message: err.Error()})
		return nil, false
	}
	return ws.Collector, true
}

// UpdatePermissions godoc
// @Summary      Update monitoring permissions
// @Description  Partially update monitoring grants; sampling starts or stops accordingly
// @Tags         /api/v1/activity
// @Accept       json
// @Produce      json
// @Param        permissions  body      entity.PermissionsUpdate  true  "Grants to change"
// @Success      200          {object}  wrapper.ResponseWrapper{data=entity.MonitoringPermissions}
// @Failure      400          {object}  wrapper.ErrorWrapper
// @Router       /activity/permissions [put]
func (h *ActivityHandler) UpdatePermissions(c *gin.Context) {
	var req entity.PermissionsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	collector, ok := h.collector(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    collector.UpdatePermissions(c.Request.Context(), req),
		Success: true,
	})
}

// GetPermissions godoc
// @Summary      Get monitoring permissions
// @Tags         /api/v1/activity
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.MonitoringPermissions}
// @Router       /activity/permissions [get]
func (h *ActivityHandler) GetPermissions(c *gin.Context) {
	collector, ok := h.collector(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    collector.Permissions(c.Request.Context()),
		Success: true,
	})
}

// GetMonitoringStatus godoc
// @Summary      Get monitoring status
// @Tags         /api/v1/activity
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.MonitoringStatus}
// @Router       /activity/monitoring [get]
func (h *ActivityHandler) GetMonitoringStatus(c *gin.Context) {
	collector, ok := h.collector(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    collector.Status(c.Request.Context()),
		Success: true,
	})
}

// IngestEvents godoc
// @Summary      Push activity events
// @Description  Buffer events from an external agent until the next sample. Events for kinds without a grant are dropped. Durations may not exceed the retention window.
// @Tags         /api/v1/activity
// @Accept       json
// @Produce      json
// @Param        events  body      entity.IngestActivityRequest  true  "Events"
// @Success      202     {object}  wrapper.ResponseWrapper{data=IngestResult}
// @Failure      400     {object}  wrapper.ErrorWrapper
// @Router       /activity/events [post]
func (h *ActivityHandler) IngestEvents(c *gin.Context) {
	var req entity.IngestActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	for _, e := range req.Events {
		if !e.Permission.Valid() || !e.Category.Valid() {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: "Invalid permission or category: " + string(e.Permission) + "/" + string(e.Category),
			})
			return
		}
	}

	collector, ok := h.collector(c)
	if !ok {
		return
	}
	for _, e := range req.Events {
		if e.Duration > collector.MaxEventSeconds() {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: fmt.Sprintf("Event duration %ds exceeds the %ds limit", e.Duration, collector.MaxEventSeconds()),
			})
			return
		}
	}

	userID := middleware.UserID(c)
	permissions := collector.Permissions(c.Request.Context())
	now := h.clock.Now()

	var result IngestResult
	for _, e := range req.Events {
		if !permissions.Granted(e.Permission) {
			result.Dropped++
			continue
		}
		h.hub.Push(userID, e.Permission, activity.FromIngest(e, now))
		result.Accepted++
	}

	c.JSON(http.StatusAccepted, wrapper.ResponseWrapper{
		Data:    result,
		Success: true,
	})
}

// GetEvents godoc
// @Summary      List activity events
// @Description  Newest first. Without start and end the whole retained history is returned.
// @Tags         /api/v1/activity
// @Produce      json
// @Param        start  query     string  false  "RFC3339 start"
// @Param        end    query     string  false  "RFC3339 end"
// @Success      200    {object}  wrapper.ResponseWrapper{data=[]entity.ActivityEvent}
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Router       /activity/events [get]
func (h *ActivityHandler) GetEvents(c *gin.Context) {
	var r *entity.TimeRange
	if c.Query("start") != "" || c.Query("end") != "" {
		parsed, ok := h.timeRange(c)
		if !ok {
			return
		}
		r = &parsed
	}

	collector, ok := h.collector(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    collector.Activities(c.Request.Context(), r),
		Success: true,
	})
}

// GetSummary godoc
// @Summary      Summarize activity
// @Description  Defaults to the last 24 hours
// @Tags         /api/v1/activity
// @Produce      json
// @Param        start  query     string  false  "RFC3339 start"
// @Param        end    query     string  false  "RFC3339 end"
// @Success      200    {object}  wrapper.ResponseWrapper{data=entity.ActivitySummary}
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Router       /activity/summary [get]
func (h *ActivityHandler) GetSummary(c *gin.Context) {
	r, ok := h.timeRange(c)
	if !ok {
		return
	}
	collector, ok := h.collector(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    collector.Summary(c.Request.Context(), r),
		Success: true,
	})
}

// GetMetrics godoc
// @Summary      Productivity metrics
// @Description  Defaults to the last 24 hours
// @Tags         /api/v1/activity
// @Produce      json
// @Param        start  query     string  false  "RFC3339 start"
// @Param        end    query     string  false  "RFC3339 end"
// @Success      200    {object}  wrapper.ResponseWrapper{data=entity.ProductivityMetrics}
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Router       /activity/metrics [get]
func (h *ActivityHandler) GetMetrics(c *gin.Context) {
	r, ok := h.timeRange(c)
	if !ok {
		return
	}
	collector, ok := h.collector(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    collector.ProductivityMetrics(c.Request.Context(), r),
		Success: true,
	})
}

// timeRange reads start and end. end defaults to now and start to
// defaultWindow before end.
func (h *ActivityHandler) timeRange(c *gin.Context) (entity.TimeRange, bool) {
	r := entity.TimeRange{End: h.clock.Now()}

	if end := c.Query("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid end, expected RFC3339"})
			return r, false
		}
		r.End = t
	}
	r.Start = r.End.Add(-defaultWindow)
	if start := c.Query("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid start, expected RFC3339"})
			return r, false
		}
		r.Start = t
	}

	if err := activity.CheckRange(r); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error()})
		return r, false
	}
	return r, true
}
