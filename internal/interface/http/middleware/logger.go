package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/response"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// HeaderRequestID 请求ID的Header名
const HeaderRequestID = "X-Request-ID"

// SlowRequestThreshold 超过该耗时的请求记录为WARN
const SlowRequestThreshold = 3 * time.Second

// RequestLogger 访问日志
// 客户端带了X-Request-ID时沿用，否则生成UUID，并写回响应头
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		latency := time.Since(start)
		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			attrs = append(attrs, slog.String("trace_id", traceID))
		}

		ctx := c.Request.Context()
		switch {
		case latency > SlowRequestThreshold:
			slog.WarnContext(ctx, "slow request", attrs...)
		case c.Writer.Status() >= 500:
			slog.ErrorContext(ctx, "request", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}

// Recovery panic恢复，记录堆栈后返回500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic recovered",
			slog.Any("panic", recovered),
			slog.String("path", c.Request.URL.Path),
			slog.String("request_id", c.GetString("request_id")),
		)
		response.Error(c, apperrors.ErrInternal)
		c.Abort()
	})
}
