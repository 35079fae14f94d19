package handler

import (
	"errors"
	"net/http"

	"Lee_Tube/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Response 统一响应envelope
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func OKMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}

// Fail 业务错误带自己的状态码和提示；未知错误按500处理，细节只进日志
func Fail(c *gin.Context, err error) {
	var ae *pkg.AppError
	if errors.As(err, &ae) {
		c.JSON(ae.Status, Response{Success: false, Message: ae.Msg})
		return
	}
	logrus.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "internal error"})
}

func FailInvalid(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: msg})
}
