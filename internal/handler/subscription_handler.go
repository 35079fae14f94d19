package handler

import (
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	svc *service.SubscriptionService
}

type NotificationsFlagReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// Toggle 订阅开关：POST /api/channel/:id/subscribe
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		FailInvalid(c, "invalid channel id")
		return
	}

	actor := middleware.GetActor(c)
	subscribed, err := h.svc.Toggle(c.Request.Context(), actor.Key(), actor.UserID, channelID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"subscribed": subscribed})
}

// Status 是否已订阅：GET /api/channel/:id/subscribe
func (h *SubscriptionHandler) Status(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		FailInvalid(c, "invalid channel id")
		return
	}

	actor := middleware.GetActor(c)
	subscribed, err := h.svc.IsSubscribed(c.Request.Context(), actor.Key(), channelID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"subscribed": subscribed})
}

// SetNotifications 通知开关：PUT /api/channel/:id/notifications
func (h *SubscriptionHandler) SetNotifications(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		FailInvalid(c, "invalid channel id")
		return
	}
	var req NotificationsFlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.svc.SetNotifications(c.Request.Context(), actor.Key(), channelID, *req.Enabled); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "updated")
}

// ListSubscribers 频道订阅者列表：GET /api/channel/:id/subscribers
func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		FailInvalid(c, "invalid channel id")
		return
	}
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, next, err := h.svc.ListSubscribers(c.Request.Context(), channelID, cursor, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"list": list, "next_cursor": next})
}

// ListSubscriptions 本人订阅的频道列表：GET /api/subscriptions
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	actor := middleware.GetActor(c)
	list, next, err := h.svc.ListSubscribedChannels(c.Request.Context(), actor.Key(), cursor, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"list": list, "next_cursor": next})
}
