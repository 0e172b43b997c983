package shared

import (
	"context"
	"errors"
)

// Transactor 事务边界接口
// domain层只依赖这个接口，具体实现为mysql.TxManager（测试中为内存实现）
//
// fn内部通过ctx取得事务句柄，所有仓储调用都必须使用传入的ctx
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ErrDuplicateKey 存储层唯一约束冲突
// 仓储实现把驱动错误（MySQL 1062）转换为该错误，由领域层映射为具体的业务错误
var ErrDuplicateKey = errors.New("duplicate key")
