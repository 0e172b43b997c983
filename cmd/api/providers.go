package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/internal/interface/http/router"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// ========================================
// Custom Providers
// ========================================
// 构造函数参数不能直接由类型推断时（需要从Config取字段、需要cleanup、
// 同一个仓储以不同接口注入），在这里手写Provider

// provideDB 创建MySQL连接，cleanup关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis 创建Redis连接，cleanup关闭连接
func provideRedis(cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			slog.Warn("关闭Redis连接失败", "error", err)
		}
	}
	return client, cleanup, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideRegisterUseCase 会话有效期 = Refresh Token有效期
func provideRegisterUseCase(cfg *config.Config, userService user.Service, jwtManager *jwt.Manager, sessions appuser.SessionStore) *appuser.RegisterUseCase {
	return appuser.NewRegisterUseCase(userService, jwtManager, sessions, cfg.JWT.RefreshTokenExpire)
}

// provideLoginUseCase 会话有效期 = Refresh Token有效期
func provideLoginUseCase(cfg *config.Config, userService user.Service, jwtManager *jwt.Manager, sessions appuser.SessionStore) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessions, cfg.JWT.RefreshTokenExpire)
}

// provideAuthMiddleware 黑名单由Redis会话存储提供
func provideAuthMiddleware(jwtManager *jwt.Manager, sessions *redis.SessionStore) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtManager, sessions)
}

// provideBookService 书评仓储作为级联删除者注入
func provideBookService(books book.Repository, reviews review.Repository, tx *mysql.TxManager) book.Service {
	return book.NewService(books, reviews, tx)
}

// provideAggregator 评分从书评仓储读取，写回图书仓储
func provideAggregator(reviews review.Repository, books book.Repository) *rating.Aggregator {
	return rating.NewAggregator(reviews, books)
}

// provideReviewService 书评领域服务
func provideReviewService(reviews review.Repository, books book.Repository, aggregator *rating.Aggregator, tx *mysql.TxManager) review.Service {
	return review.NewService(reviews, books, aggregator, tx)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(cfg *config.Config, handlers router.Handlers, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	return router.New(cfg, handlers, authMiddleware)
}
