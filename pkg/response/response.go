package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构体
// 前端约定：success 为准，message 给人看，error 只在出错时出现
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK 成功响应 (200)
func OK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 创建成功响应 (201)
func Created(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(ctx *gin.Context, httpStatus int, message string) {
	ctx.JSON(httpStatus, Response{
		Success: false,
		Message: message,
	})
}

// FailWithError 失败响应，附带详细错误 (开发模式下用)
func FailWithError(ctx *gin.Context, httpStatus int, message, detail string) {
	ctx.JSON(httpStatus, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
