package handler

import (
	"net/http"
	"slices"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/dinerozz/nudge-engine/pkg/zapctx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PromptSelector interface {
	GenerateContextualPrompt(c entity.PromptContext, persona entity.Persona) *entity.SarcasticPrompt
	Personas() []entity.Persona
}

type PromptHandler struct {
	selector PromptSelector
	clock    utils.Clock
}

func NewPromptHandler(selector PromptSelector, clock utils.Clock) *PromptHandler {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &PromptHandler{selector: selector, clock: clock}
}

// GetContextualPrompt godoc
// @Summary      Pick an intervention prompt
// @Description  Returns a prompt whose trigger matches the context, or 204 when none does. hour defaults to the server clock.
// @Tags         /api/v1/prompts
// @Accept       json
// @Produce      json
// @Param        request  body      entity.ContextualPromptRequest  true  "Context and persona"
// @Success      200      {object}  wrapper.ResponseWrapper{data=entity.SarcasticPrompt}
// @Success      204
// @Failure      400      {object}  wrapper.ErrorWrapper
// @Router       /prompts/contextual [post]
func (h *PromptHandler) GetContextualPrompt(c *gin.Context) {
	var req entity.ContextualPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	if req.Persona != "" && !slices.Contains(h.selector.Personas(), req.Persona) {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Unknown persona: " + string(req.Persona)})
		return
	}
	if req.Context.Hour == nil {
		hour := h.clock.Now().Hour()
		req.Context.Hour = &hour
	}

	prompt := h.selector.GenerateContextualPrompt(req.Context, req.Persona)
	if prompt == nil {
		c.Status(http.StatusNoContent)
		return
	}

	zapctx.Debug(c.Request.Context(), "prompt selected", zap.String("prompt_id", prompt.ID), zap.String("persona", string(prompt.Persona)))
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    prompt,
		Success: true,
	})
}

// GetPersonas godoc
// @Summary      List prompt personas
// @Tags         /api/v1/prompts
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.Persona}
// @Router       /prompts/personas [get]
func (h *PromptHandler) GetPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.selector.Personas(),
		Success: true,
	})
}
