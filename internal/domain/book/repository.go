package book

import (
	"context"
	"strings"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 所有方法都从ctx中取事务句柄,在Transactor内调用即参与同一事务
type Repository interface {
	// Create 创建图书,回填ID
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(含添加者姓名),不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
	// 书评变更与删除图书都先锁图书行,同一本书的评分重算因此串行执行
	LockByID(ctx context.Context, id uint) (*Book, error)

	// Update 只更新描述性字段,不会覆盖评分字段
	Update(ctx context.Context, book *Book) error

	// Delete 物理删除图书
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// ListByOwner 某用户添加的全部图书,最新在前
	ListByOwner(ctx context.Context, ownerID uint) ([]*Book, error)

	// UpdateRating 写回派生评分字段,图书不存在时是no-op
	UpdateRating(ctx context.Context, id uint, averageRating float64, reviewCount int) error
}

// ReviewCascader 删除图书时级联删除书评
// 由review.Repository实现,book包只依赖这一个方法避免循环引用
type ReviewCascader interface {
	DeleteByBook(ctx context.Context, bookID uint) (int64, error)
}

// SortOrder 列表排序方式
type SortOrder string

const (
	SortNewest SortOrder = "newest" // 默认:创建时间倒序
	SortYear   SortOrder = "year"   // 出版年份倒序
	SortRating SortOrder = "rating" // 综合评分倒序
)

// 分页默认值
const (
	DefaultPage     = 1
	DefaultPageSize = 9
	MaxPageSize     = 100
)

// ListParams 列表查询参数
type ListParams struct {
	Page     int       // 页码(从1开始)
	PageSize int       // 每页数量
	Search   string    // 书名或作者模糊匹配(不区分大小写)
	Genre    Genre     // 精确匹配,为空表示不过滤
	Sort     SortOrder // 未知值按SortNewest处理
}

// Normalize 填充默认值并修正越界参数
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
	switch p.Sort {
	case SortNewest, SortYear, SortRating:
	default:
		p.Sort = SortNewest
	}
}

// Offset 当前页偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
