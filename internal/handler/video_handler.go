package handler

import (
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/service"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	svc *service.VideoService
}

type PublishVideoReq struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	VideoURL     string `json:"video_url" binding:"required"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// Publish 发布视频元数据：POST /api/video
func (h *VideoHandler) Publish(c *gin.Context) {
	var req PublishVideoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}
	actor := middleware.GetActor(c)
	video, err := h.svc.Publish(c.Request.Context(), actor.UserID, req.Title, req.Description, req.VideoURL, req.ThumbnailURL)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, video)
}

// Get 视频详情：GET /api/video/:id
func (h *VideoHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		FailInvalid(c, "invalid video id")
		return
	}
	video, errS := h.svc.Get(c.Request.Context(), id)
	if errS != nil {
		Fail(c, errS)
		return
	}
	OK(c, video)
}

// ListByChannel 频道视频列表：GET /api/channel/:id/videos?page=&limit=
func (h *VideoHandler) ListByChannel(c *gin.Context) {
	ownerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		FailInvalid(c, "invalid channel id")
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

// Delete 删除视频：DELETE /api/video/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		FailInvalid(c, "invalid video id")
		return
	}
	actor := middleware.GetActor(c)
	if errS := h.svc.Delete(c.Request.Context(), id, actor.UserID, actor.IsAdmin()); errS != nil {
		Fail(c, errS)
		return
	}
	OKMessage(c, "video deleted")
}
