package handler

import (
	"net/http"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/gin-gonic/gin"
)

type TaskAnalyzer interface {
	AnalyzeTask(task entity.Task) entity.TaskAnalysis
	GenerateSchedulingSuggestions(task entity.Task, productiveHours []int) []entity.TimeBlock
}

type TaskHandler struct {
	analyzer TaskAnalyzer
}

func NewTaskHandler(analyzer TaskAnalyzer) *TaskHandler {
	return &TaskHandler{analyzer: analyzer}
}

// AnalyzeTask godoc
// @Summary      Analyze a task
// @Description  Urgency, procrastination risk, progress and a recommended action
// @Tags         /api/v1/tasks
// @Accept       json
// @Produce      json
// @Param        task  body      entity.Task  true  "Task"
// @Success      200   {object}  wrapper.ResponseWrapper{data=entity.TaskAnalysis}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Router       /tasks/analyze [post]
func (h *TaskHandler) AnalyzeTask(c *gin.Context) {
	var task entity.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	if msg := validateTask(task); msg != "" {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: msg})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.analyzer.AnalyzeTask(task),
		Success: true,
	})
}

// ScheduleTask godoc
// @Summary      Suggest focus blocks for a task
// @Description  Blocks start tomorrow at the given or learned productive hours
// @Tags         /api/v1/tasks
// @Accept       json
// @Produce      json
// @Param        request  body      entity.ScheduleRequest  true  "Task and optional hours"
// @Success      200      {object}  wrapper.ResponseWrapper{data=[]entity.TimeBlock}
// @Failure      400      {object}  wrapper.ErrorWrapper
// @Router       /tasks/schedule [post]
func (h *TaskHandler) ScheduleTask(c *gin.Context) {
	var req entity.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	if msg := validateTask(req.Task); msg != "" {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: msg})
		return
	}
	for _, hour := range req.ProductiveHours {
		if hour < 0 || hour > 23 {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Productive hours must be between 0 and 23"})
			return
		}
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.analyzer.GenerateSchedulingSuggestions(req.Task, req.ProductiveHours),
		Success: true,
	})
}

func validateTask(task entity.Task) string {
	if task.ID == "" {
		return "Task id is required"
	}
	switch task.Status {
	case entity.TaskTodo, entity.TaskInProgress, entity.TaskDone:
	default:
		return "Unknown task status: " + string(task.Status)
	}
	if task.EstimatedTime < 0 || task.TimeSpent < 0 {
		return "Estimated and spent time cannot be negative"
	}
	return ""
}
