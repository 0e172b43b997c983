package book

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/ownership"
	"github.com/xiebiao/bookreview/internal/domain/shared"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 修改与删除都遵循"先存在性后归属":不存在返回404,非所有者返回403
// 2. 评分字段不接受客户端输入,只能由rating.Aggregator重算
type Service interface {
	// CreateBook 添加图书,评分字段初始化为0
	CreateBook(ctx context.Context, params CreateParams) (*Book, error)

	// GetBook 图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// UpdateBook 修改描述性字段,只有添加者本人可以修改
	UpdateBook(ctx context.Context, id, actingUserID uint, update Update) (*Book, error)

	// DeleteBook 删除图书并级联删除其全部书评,返回被删除的书评数
	DeleteBook(ctx context.Context, id, actingUserID uint) (int64, error)

	// ListBooks 分页查询,公开接口
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// ListUserBooks 某用户添加的图书
	ListUserBooks(ctx context.Context, userID uint) ([]*Book, error)
}

// CreateParams 添加图书参数
type CreateParams struct {
	Title         string
	Author        string
	Description   string
	Genre         Genre
	PublishedYear int
	AddedBy       uint
}

// service 领域服务实现
type service struct {
	repo    Repository
	reviews ReviewCascader
	tx      shared.Transactor
	now     func() time.Time
}

// NewService 创建图书领域服务
func NewService(repo Repository, reviews ReviewCascader, tx shared.Transactor) Service {
	metrics.InitMetrics()
	return &service{
		repo:    repo,
		reviews: reviews,
		tx:      tx,
		now:     time.Now,
	}
}

// CreateBook 添加图书
func (s *service) CreateBook(ctx context.Context, params CreateParams) (*Book, error) {
	b := NewBook(params.Title, params.Author, params.Description, params.Genre, params.PublishedYear, params.AddedBy)
	if fields := b.Validate(s.now()); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBook 图书详情
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateBook 修改图书
func (s *service) UpdateBook(ctx context.Context, id, actingUserID uint, update Update) (*Book, error) {
	// 1. 存在性 → 归属
	b, err := ownership.Resolve(ctx, actingUserID, func(ctx context.Context) (*Book, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if update.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	// 2. 在副本上应用修改并校验,校验失败不影响已加载的实体
	updated := *b
	updated.Apply(update)
	if fields := updated.Validate(s.now()); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	// 3. 持久化(仓储只写描述性字段)
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBook 删除图书
// 在一个事务内完成:锁图书行 → 校验归属 → 删除全部书评 → 删除图书
// 锁住图书行后,并发的书评创建会阻塞在同一把锁上,不会产生孤儿书评
func (s *service) DeleteBook(ctx context.Context, id, actingUserID uint) (removed int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "book", "BookService.DeleteBook")
	span.SetAttributes(attribute.Int64("book.id", int64(id)))
	defer func() { tracing.EndSpan(span, err) }()

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := ownership.Resolve(ctx, actingUserID, func(ctx context.Context) (*Book, error) {
			return s.repo.LockByID(ctx, id)
		}); err != nil {
			return err
		}

		n, err := s.reviews.DeleteByBook(ctx, id)
		if err != nil {
			return err
		}
		removed = n

		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return 0, err
	}

	metrics.AddCounter(metrics.ReviewsCascadeDeletedTotal, float64(removed))
	span.SetAttributes(attribute.Int64("reviews.removed", removed))
	return removed, nil
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

// ListUserBooks 某用户添加的图书
func (s *service) ListUserBooks(ctx context.Context, userID uint) ([]*Book, error) {
	return s.repo.ListByOwner(ctx, userID)
}
