// Package router 组装Gin引擎：全局中间件、业务路由与运维端点
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	Book   *handler.BookHandler
	Review *handler.ReviewHandler
	User   *handler.UserHandler
}

// New 创建并配置Gin引擎
//
// 中间件顺序：Recovery → 访问日志 → Tracing → Metrics → CORS
// 写接口（认证之后）再挂限流
func New(cfg *config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
	dto.RegisterValidator()

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger())
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(cfg.CORS))
	}

	r.GET("/", handler.Health)
	// 生产环境建议关闭或加访问控制
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		response.ErrorWithCode(c, apperrors.ErrCodeNotFound, "接口不存在")
	})

	auth := authMiddleware.RequireAuth()
	chain := []gin.HandlerFunc{auth}
	if cfg.RateLimit.Enabled {
		chain = append(chain, middleware.NewIPRateLimiter(cfg.RateLimit).Middleware())
	}
	// write 认证 + 限流 + handler
	write := func(handle gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, chain...), handle)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.User.Register)
			authGroup.POST("/login", h.User.Login)
			authGroup.POST("/refresh", h.User.Refresh)
			authGroup.POST("/logout", auth, h.User.Logout)
			authGroup.GET("/me", auth, h.User.Me)
		}

		books := api.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/user/me", auth, h.Book.ListMyBooks)
			books.GET("/:id", h.Book.GetBook)
			books.POST("", write(h.Book.CreateBook)...)
			books.PUT("/:id", write(h.Book.UpdateBook)...)
			books.DELETE("/:id", write(h.Book.DeleteBook)...)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/book/:bookId", h.Review.ListBookReviews)
			reviews.GET("/user", auth, h.Review.ListMyReviews)
			reviews.POST("", write(h.Review.CreateReview)...)
			reviews.PUT("/:id", write(h.Review.UpdateReview)...)
			reviews.DELETE("/:id", write(h.Review.DeleteReview)...)
		}
	}

	return r
}
