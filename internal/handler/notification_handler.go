package handler

import (
	"net/http"
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/pkg"
	"Lee_Tube/internal/service"
	"Lee_Tube/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	svc      *service.NotificationService
	registry ws.Registry
}

type MarkReadReq struct {
	IDs []uint64 `json:"ids" binding:"required"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源连接
	},
}

func NewNotificationHandler(svc *service.NotificationService, registry ws.Registry) *NotificationHandler {
	return &NotificationHandler{svc: svc, registry: registry}
}

// List 通知列表：GET /api/notification/list
func (h *NotificationHandler) List(c *gin.Context) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	actor := middleware.GetActor(c)
	list, next, err := h.svc.List(c.Request.Context(), actor.UserID, cursor, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	unread, err := h.svc.UnreadCount(c.Request.Context(), actor.UserID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"list": list, "next_cursor": next, "unread": unread})
}

// MarkRead 标记已读：POST /api/notification/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req MarkReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}

	actor := middleware.GetActor(c)
	if err := h.svc.MarkRead(c.Request.Context(), actor.UserID, req.IDs); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "ok")
}

// MarkAllRead 全部已读：POST /api/notification/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor := middleware.GetActor(c)
	if err := h.svc.MarkAllRead(c.Request.Context(), actor.UserID); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "ok")
}

// Connect 实时通知通道：GET /api/ws?token=<access>
// 升级成功即视为 join，连接断开即 leave；
// leave 按句柄匹配，同一用户的新连接不会被旧连接的断开挤掉
func (h *NotificationHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "missing token"})
		return
	}
	claims, err := pkg.ParseAccess(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("websocket upgrade failed: %v", err)
		return
	}

	// 裸连接不入表：推送来自任意请求goroutine，必须先包成写安全句柄
	client := ws.NewClient(conn)
	h.registry.Join(claims.UserID, client)
	defer func() {
		h.registry.Leave(client)
		_ = client.Close()
	}()

	// 只为感知断开而读；客户端不需要上行业务消息
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
