package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"board_go/internal/pkg/apperr"
)

// Response Standard API Response
type Response struct {
	Code int         `json:"code"`
	Data interface{} `json:"data,omitempty"`
	Msg  string      `json:"msg,omitempty"`
}

// Success Success response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: apperr.CodeSuccess,
		Data: data,
		Msg:  "success",
	})
}

// Fail Fail response with error
// AppError按分类映射HTTP状态，其余一律500
func Fail(c *gin.Context, err error) {
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		c.JSON(httpStatus(ae), Response{
			Code: ae.Code,
			Msg:  ae.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code: apperr.CodeInternalError,
		Msg:  err.Error(),
	})
}

func httpStatus(ae *apperr.AppError) int {
	switch {
	case errors.Is(ae, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(ae, apperr.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(ae, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(ae, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

// FailWithCode Fail with specific code
func FailWithCode(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code: code,
		Msg:  msg,
	})
}

// BadRequest Bad request response
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Code: apperr.CodeBadRequest,
		Msg:  msg,
	})
}

// Unauthorized Unauthorized response
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{
		Code: apperr.CodeUnauthorized,
		Msg:  msg,
	})
}

// Forbidden Forbidden response
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{
		Code: apperr.CodeForbidden,
		Msg:  msg,
	})
}

// NotFound Not found response
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{
		Code: apperr.CodeNotFound,
		Msg:  msg,
	})
}
