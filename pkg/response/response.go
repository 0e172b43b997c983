package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Success标识请求是否成功，客户端无需解析HTTP状态码即可分支
// 2. Message成功时可选，失败时是用户友好的提示
// 3. Data是业务数据，失败时省略
// 4. Errors是字段级校验详情（仅参数错误时出现）
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Message 只带提示信息的成功响应（如删除成功）
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
	})
}

// SuccessWithMessage 带提示信息和数据的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	err := reviewUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	// 内部错误只记录日志，不把底层细节返回给客户端
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("request_id", c.GetString("request_id")),
			slog.Int("code", appErr.Code),
			slog.Any("error", appErr),
		)
		_ = c.Error(err)
	}

	c.JSON(status, Response{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// =========================================
// 分页响应结构
// =========================================

// PageResponse 分页响应
// 字段与前端约定：count为本页条数，total为总数
type PageResponse struct {
	Success     bool        `json:"success"`
	Count       int         `json:"count"`
	Total       int64       `json:"total"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Data        interface{} `json:"data"`
}

// TotalPages 计算总页数
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, count int, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, PageResponse{
		Success:     true,
		Count:       count,
		Total:       total,
		TotalPages:  TotalPages(total, pageSize),
		CurrentPage: page,
		Data:        list,
	})
}

// SuccessWithCount 列表成功响应（不分页）
func SuccessWithCount(c *gin.Context, list interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"data":    list,
	})
}
