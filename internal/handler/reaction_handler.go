package handler

import (
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/service"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	svc *service.ReactionService
}

type ToggleReq struct {
	Action string `json:"action" binding:"required"`
}

func NewReactionHandler(svc *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{svc: svc}
}

// Toggle 反应翻转接口：POST /api/react/:kind/:id
func (h *ReactionHandler) Toggle(c *gin.Context) {
	kind := c.Param("kind")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		FailInvalid(c, "invalid target id")
		return
	}

	var req ToggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}

	actor := middleware.GetActor(c)
	result, err := h.svc.Toggle(c.Request.Context(), actor.Key(), actor.UserID, kind, targetID, req.Action)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, result)
}

// Count 计数读接口，匿名可访问：GET /api/react/:kind/:id/count
func (h *ReactionHandler) Count(c *gin.Context) {
	kind := c.Param("kind")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		FailInvalid(c, "invalid target id")
		return
	}

	counts, err := h.svc.Counts(c.Request.Context(), kind, targetID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, counts)
}

// State 观看者自己的反应状态：GET /api/react/:kind/:id/state
func (h *ReactionHandler) State(c *gin.Context) {
	kind := c.Param("kind")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		FailInvalid(c, "invalid target id")
		return
	}

	actor := middleware.GetActor(c)
	state, err := h.svc.ViewerState(c.Request.Context(), actor.Key(), kind, targetID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"viewer_state": state})
}
