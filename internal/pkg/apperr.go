package pkg

import (
	"errors"
	"net/http"
)

// AppError 业务错误，携带HTTP状态码，handler层统一映射到响应envelope
type AppError struct {
	Status int
	Msg    string
}

func (e *AppError) Error() string {
	return e.Msg
}

// WithMessage 换一条提示语，错误类别（状态码）不变
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{Status: e.Status, Msg: msg}
}

// Is 同状态码视为同一错误类别，WithMessage 派生的错误仍能用 errors.Is 判定
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Status == t.Status
}

var (
	ErrInvalidArgument = &AppError{Status: http.StatusBadRequest, Msg: "invalid argument"}
	ErrUnauthorized    = &AppError{Status: http.StatusUnauthorized, Msg: "unauthorized"}
	ErrNotFound        = &AppError{Status: http.StatusNotFound, Msg: "not found"}
	ErrConflict        = &AppError{Status: http.StatusConflict, Msg: "conflict"}
	ErrInternal        = &AppError{Status: http.StatusInternalServerError, Msg: "internal error"}
)

// HTTPStatus 任意错误到状态码；非 AppError 一律按 500 处理
func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
