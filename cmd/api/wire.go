//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 依赖链：
// *gin.Engine ← router.Handlers ← Handler ← UseCase ← 领域服务 ← Repository ← *gorm.DB ← *config.Config

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/messaging"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/router"
)

// infrastructureSet 基础设施：数据库、Redis、事务、事件发布
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	mysql.NewTxManager,
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	messaging.NewEventPublisher,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewReviewRepository,
)

// domainSet 领域层
var domainSet = wire.NewSet(
	user.NewService,
	provideBookService,
	provideAggregator,
	provideReviewService,
)

// applicationSet 应用层
var applicationSet = wire.NewSet(
	provideRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewGetCurrentUserUseCase,

	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewListUserBooksUseCase,

	appreview.NewCreateReviewUseCase,
	appreview.NewUpdateReviewUseCase,
	appreview.NewDeleteReviewUseCase,
	appreview.NewListBookReviewsUseCase,
	appreview.NewListUserReviewsUseCase,
)

// interfaceSet 接口层：JWT、中间件、Handler、路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideGinEngine,
)

// InitializeApp 初始化整个应用
// cleanup按创建的逆序关闭事件发布、Redis与数据库连接
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
