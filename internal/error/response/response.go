package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rwportal-http-service/internal/error/code"
)

// Response 定义统一的响应格式，失败时 Error 字段携带可读的错误信息
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, errorCode int, data interface{}) {
	FailWithMessage(c, errorCode, code.GetMessage(errorCode), data)
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Error:   message,
		Data:    data,
	})
}

// AbortWithMessage 失败响应并中止后续处理，供中间件使用
func AbortWithMessage(c *gin.Context, errorCode int, message string) {
	FailWithMessage(c, errorCode, message, nil)
	c.Abort()
}

// ParamError 参数错误响应
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// ServerError 服务器错误响应
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, errorCode int, message string) {
	if message == "" {
		message = code.GetMessage(errorCode)
	}
	FailWithMessage(c, errorCode, message, nil)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	AbortWithMessage(c, code.ErrTokenInvalid, message)
}

// Forbidden 权限不足响应
func Forbidden(c *gin.Context, message string) {
	AbortWithMessage(c, code.ErrForbidden, message)
}
