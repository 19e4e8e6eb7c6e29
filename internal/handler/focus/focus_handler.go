package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/dinerozz/nudge-engine/internal/service/focus"
	"github.com/dinerozz/nudge-engine/internal/service/workspace"
	"github.com/dinerozz/nudge-engine/middleware"
	"github.com/gin-gonic/gin"
)

type WorkspaceService interface {
	Get(ctx context.Context, userID string) (*workspace.Workspace, error)
}

type FocusHandler struct {
	workspaces WorkspaceService
}

func NewFocusHandler(workspaces WorkspaceService) *FocusHandler {
	return &FocusHandler{workspaces: workspaces}
}

func (h *FocusHandler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	ws, err := h.workspaces.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, wrapper.ErrorWrapper{Message: err.Error()})
		return nil, false
	}
	return ws, true
}

// StartSession godoc
// @Summary      Start a focus session
// @Tags         /api/v1/focus
// @Accept       json
// @Produce      json
// @Param        session  body      entity.StartFocusRequest  true  "Session"
// @Success      201      {object}  wrapper.ResponseWrapper{data=entity.FocusStats}
// @Failure      400      {object}  wrapper.ErrorWrapper
// @Failure      409      {object}  wrapper.ErrorWrapper
// @Router       /focus/start [post]
func (h *FocusHandler) StartSession(c *gin.Context) {
	var req entity.StartFocusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	err := ws.Tracker.StartTracking(c.Request.Context(), req.SessionID, ws.UserID, req.TaskID)
	switch {
	case errors.Is(err, focus.ErrSessionActive):
		c.JSON(http.StatusConflict, wrapper.ErrorWrapper{Message: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{
		Data:    ws.Tracker.CurrentStats(),
		Success: true,
	})
}

// SendSignal godoc
// @Summary      Report a page or window visibility signal
// @Description  page_hidden, page_visible, window_blur, window_focus or before_unload
// @Tags         /api/v1/focus
// @Accept       json
// @Produce      json
// @Param        signal  body      entity.FocusSignalRequest  true  "Signal"
// @Success      200     {object}  wrapper.ResponseWrapper{data=entity.FocusStats}
// @Failure      400     {object}  wrapper.ErrorWrapper
// @Router       /focus/signal [post]
func (h *FocusHandler) SendSignal(c *gin.Context) {
	var req entity.FocusSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	if !req.Signal.Valid() {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Unknown signal: " + string(req.Signal)})
		return
	}

	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.Signals.Publish(req.Signal)

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    ws.Tracker.CurrentStats(),
		Success: true,
	})
}

// GetStats godoc
// @Summary      Live focus stats
// @Tags         /api/v1/focus
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.FocusStats}
// @Router       /focus/stats [get]
func (h *FocusHandler) GetStats(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    ws.Tracker.CurrentStats(),
		Success: true,
	})
}

// StopSession godoc
// @Summary      Stop the focus session
// @Description  Returns the final stats; stopping with no session returns idle stats
// @Tags         /api/v1/focus
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.FocusStats}
// @Router       /focus/stop [post]
func (h *FocusHandler) StopSession(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    ws.Tracker.StopTracking(c.Request.Context()),
		Success: true,
	})
}

// GetSessions godoc
// @Summary      Focus session history
// @Description  Newest first
// @Tags         /api/v1/focus
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.FocusSessionRecord}
// @Router       /focus/sessions [get]
func (h *FocusHandler) GetSessions(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    ws.Tracker.Sessions(c.Request.Context(), ws.UserID),
		Success: true,
	})
}
