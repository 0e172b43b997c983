package review

import (
	"context"
	"errors"

	"github.com/xiebiao/bookreview/internal/domain/shared"
)

// UniquenessGuard 保证每个(图书, 用户)最多一条书评
//
// Admit是预检，只用于给出友好的错误提示；
// 真正的保证来自存储层唯一索引：并发插入时败者得到ErrDuplicateKey，
// Insert把它映射为ErrAlreadyReviewed
type UniquenessGuard struct {
	repo Repository
}

// NewUniquenessGuard 创建唯一性守卫
func NewUniquenessGuard(repo Repository) *UniquenessGuard {
	return &UniquenessGuard{repo: repo}
}

// Admit 预检
func (g *UniquenessGuard) Admit(ctx context.Context, bookID, userID uint) error {
	exists, err := g.repo.ExistsByBookAndUser(ctx, bookID, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyReviewed
	}
	return nil
}

// Insert 写入书评，唯一约束冲突映射为ErrAlreadyReviewed
func (g *UniquenessGuard) Insert(ctx context.Context, r *Review) error {
	if err := g.repo.Create(ctx, r); err != nil {
		if errors.Is(err, shared.ErrDuplicateKey) {
			return ErrAlreadyReviewed
		}
		return err
	}
	return nil
}
