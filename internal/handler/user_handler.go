package handler

import (
	"strconv"

	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

type RegisterReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register 注册：POST /api/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}
	if err := h.svc.Register(c.Request.Context(), req.Username, req.Password, req.Email); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "register success")
}

// Login 登录：POST /api/user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, pair)
}

// Logout 登出：POST /api/auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	actor := middleware.GetActor(c)
	if err := h.svc.Logout(actor.UserID); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "logout success")
}

// Refresh 刷新 token：POST /api/user/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}
	pair, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, pair)
}

// ChangePassword 改密：POST /api/auth/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		FailInvalid(c, "invalid params")
		return
	}
	actor := middleware.GetActor(c)
	if err := h.svc.ChangePassword(c.Request.Context(), actor.UserID, req.OldPassword, req.NewPassword); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "password changed, please login again")
}

// Profile 用户主页：GET /api/user/:id
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		FailInvalid(c, "invalid user id")
		return
	}
	user, errS := h.svc.GetProfile(c.Request.Context(), id)
	if errS != nil {
		Fail(c, errS)
		return
	}
	OK(c, user)
}
