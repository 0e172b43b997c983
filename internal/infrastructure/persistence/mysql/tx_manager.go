package mysql

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/retry"
)

// txKey 事务DB在context中的key
type txKey struct{}

// TxManager 事务管理器(实现shared.Transactor)
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 死锁(1213)和锁等待超时(1205)时整体重试事务
// 4. 嵌套调用直接加入外层事务,不会重试内层
type TxManager struct {
	db          *gorm.DB
	maxAttempts int
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB, cfg *config.Config) *TxManager {
	metrics.InitMetrics()
	attempts := cfg.Database.TxMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &TxManager{db: db, maxAttempts: attempts}
}

// Transaction 执行事务
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := bookRepo.LockByID(ctx, bookID); err != nil {
//	        return err
//	    }
//	    if err := reviewRepo.Create(ctx, r); err != nil {
//	        return err // 自动回滚
//	    }
//	    _, err := aggregator.Recompute(ctx, bookID)
//	    return err // nil则提交,非nil则回滚
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return retry.WithExponentialBackoff(ctx,
		func(ctx context.Context) error {
			return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(context.WithValue(ctx, txKey{}, tx))
			})
		},
		retry.MaxAttempts(m.maxAttempts),
		retry.RetryIf(isRetryableTxError),
		retry.OnRetry(func(attempt int, err error) {
			metrics.IncCounter(metrics.TxRetriesTotal)
			slog.WarnContext(ctx, "事务冲突,重试", "attempt", attempt, "error", err)
		}),
	)
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 所有仓储都必须通过它访问数据库,才能参与TxManager开启的事务
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
