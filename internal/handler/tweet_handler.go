package handler

import (
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/service"

	"github.com/gin-gonic/gin"
)

type TweetHandler struct {
	svc *service.TweetService
}

type TweetReq struct {
	Content string `json:"content" binding:"required"`
}

func NewTweetHandler(svc *service.TweetService) *TweetHandler {
	return &TweetHandler{svc: svc}
}

// Create 发布动态：POST /api/tweet
func (h *TweetHandler) Create(c *gin.Context) {
	var req TweetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}
	actor := middleware.GetActor(c)
	tweet, err := h.svc.Create(c.Request.Context(), actor.UserID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, tweet)
}

// ListByOwner 某人的动态列表：GET /api/user/:id/tweets?page=&limit=
func (h *TweetHandler) ListByOwner(c *gin.Context) {
	ownerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		FailInvalid(c, "invalid user id")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, errS := h.svc.ListByOwner(c.Request.Context(), ownerID, page, limit)
	if errS != nil {
		Fail(c, errS)
		return
	}
	OK(c, list)
}

// Delete 删除动态：DELETE /api/tweet/:id
func (h *TweetHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		FailInvalid(c, "invalid tweet id")
		return
	}
	actor := middleware.GetActor(c)
	if errS := h.svc.Delete(c.Request.Context(), id, actor.UserID, actor.IsAdmin()); errS != nil {
		Fail(c, errS)
		return
	}
	OKMessage(c, "tweet deleted")
}
