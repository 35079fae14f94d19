package handler

import (
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc *service.CommentService
}

type CommentReq struct {
	Content string `json:"content" binding:"required"`
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// Thread 评论树读接口（匿名可访问）：GET /api/video/:id/comments?page=&limit=
func (h *CommentHandler) Thread(c *gin.Context) {
	videoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || videoID == 0 {
		FailInvalid(c, "invalid video id")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	actor := middleware.GetActor(c)
	thread, err := h.svc.GetThread(c.Request.Context(), videoID, actor.Key(), page, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, thread)
}

// Add 发顶层评论：POST /api/video/:id/comments
func (h *CommentHandler) Add(c *gin.Context) {
	videoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || videoID == 0 {
		FailInvalid(c, "invalid video id")
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}

	actor := middleware.GetActor(c)
	comment, err := h.svc.Add(c.Request.Context(), videoID, actor.UserID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"id": comment.ID})
}

// Reply 回复评论：POST /api/comment/:id/replies
func (h *CommentHandler) Reply(c *gin.Context) {
	parentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || parentID == 0 {
		FailInvalid(c, "invalid comment id")
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}

	actor := middleware.GetActor(c)
	comment, err := h.svc.Reply(c.Request.Context(), parentID, actor.UserID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"id": comment.ID})
}

// Update 编辑评论：PUT /api/comment/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		FailInvalid(c, "invalid comment id")
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.svc.Update(c.Request.Context(), id, actor.UserID, actor.IsAdmin(), req.Content); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "updated")
}

// Delete 删除评论：DELETE /api/comment/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		FailInvalid(c, "invalid comment id")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.svc.Delete(c.Request.Context(), id, actor.UserID, actor.IsAdmin()); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "deleted")
}

// Report 举报评论：POST /api/comment/:id/report
func (h *CommentHandler) Report(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		FailInvalid(c, "invalid comment id")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.svc.Report(c.Request.Context(), id, actor.UserID); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "reported")
}
