package review

import (
	"context"
)

// Repository 书评仓储接口
// 所有方法都从ctx中取事务句柄
type Repository interface {
	// Create 创建书评，回填ID
	// (BookID, UserID)冲突时返回包装了shared.ErrDuplicateKey的错误
	Create(ctx context.Context, review *Review) error

	// FindByID 不存在返回ErrReviewNotFound
	FindByID(ctx context.Context, id uint) (*Review, error)

	// ExistsByBookAndUser 唯一性预检
	ExistsByBookAndUser(ctx context.Context, bookID, userID uint) (bool, error)

	// Update 只更新Rating和ReviewText
	Update(ctx context.Context, review *Review) error

	// Delete 物理删除，删除后同一用户可以重新评价
	Delete(ctx context.Context, id uint) error

	// DeleteByBook 删除某本书的全部书评，返回删除条数
	DeleteByBook(ctx context.Context, bookID uint) (int64, error)

	// ListByBook 某本书的书评（含评论者姓名），最新在前
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)

	// ListByUser 某用户的书评（含书名、作者），最新在前
	ListByUser(ctx context.Context, userID uint) ([]*Review, error)

	// ListRatingsByBook 某本书当前全部评分，事务内读取最新已提交数据
	ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error)
}
