package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/xiebiao/bookreview/docs"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/logger"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// @title                      Book Review API
// @version                    1.0
// @description                图书目录与书评服务：书评变更后在同一事务内重算图书平均评分
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志
	_, closeLog, err := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer closeLog()

	slog.Info("配置加载成功",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName),
		"redis", cfg.Redis.Addr(),
	)

	// 3. 指标与链路追踪
	metrics.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Server.Name, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			slog.Warn("初始化链路追踪失败，继续启动", "error", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	// 4. 依赖注入（wire_gen.go）
	engine, cleanup, err := InitializeApp(cfg)
	if err != nil {
		slog.Error("初始化应用失败", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// 5. 启动HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("服务启动成功", "addr", srv.Addr, "swagger", "/swagger/index.html", "metrics", cfg.Metrics.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("服务异常退出", "error", err)
			stop()
		}
	}()

	// 6. 优雅关闭：停止接收新请求，等待进行中的事务完成
	<-ctx.Done()
	slog.Info("正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("服务关闭超时", "error", err)
	}
	slog.Info("服务已停止")
}
