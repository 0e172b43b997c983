package review

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/ownership"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/shared"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// BookReader 书评服务对图书仓储的依赖
type BookReader interface {
	FindByID(ctx context.Context, id uint) (*book.Book, error)
	LockByID(ctx context.Context, id uint) (*book.Book, error)
}

// Recomputer 评分重算（rating.Aggregator）
type Recomputer interface {
	Recompute(ctx context.Context, bookID uint) (rating.Summary, error)
}

// Service 书评生命周期管理
//
// 每个变更操作都在一个事务内完成，顺序固定为：
//
//	锁图书行(FOR UPDATE) → 书评变更 → 评分重算
//
// 评分重算失败时整个事务回滚，书评变更不会单独生效。
// 所有写路径都先锁图书行，同一本书的变更串行执行，不会出现交叉死锁。
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Result, error)
	Update(ctx context.Context, id, actingUserID uint, update Update) (*Result, error)
	Delete(ctx context.Context, id, actingUserID uint) (*Result, error)

	// ListByBook 图书不存在返回404
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)
	ListByUser(ctx context.Context, userID uint) ([]*Review, error)
}

// CreateParams 发表书评参数
type CreateParams struct {
	BookID     uint
	UserID     uint
	Rating     int
	ReviewText string
}

// Result 变更结果：书评本身 + 重算后的图书评分
// Delete时Review为被删除的书评
type Result struct {
	Review *Review
	Rating rating.Summary
}

type service struct {
	reviews    Repository
	books      BookReader
	guard      *UniquenessGuard
	aggregator Recomputer
	tx         shared.Transactor
}

// NewService 创建书评服务
func NewService(reviews Repository, books BookReader, aggregator Recomputer, tx shared.Transactor) Service {
	metrics.InitMetrics()
	return &service{
		reviews:    reviews,
		books:      books,
		guard:      NewUniquenessGuard(reviews),
		aggregator: aggregator,
		tx:         tx,
	}
}

// Create 发表书评
func (s *service) Create(ctx context.Context, params CreateParams) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "review", "ReviewService.Create")
	span.SetAttributes(attribute.Int64("book.id", int64(params.BookID)))
	defer func() {
		s.record("create", err)
		tracing.EndSpan(span, err)
	}()

	r := NewReview(params.BookID, params.UserID, params.Rating, params.ReviewText)
	if fields := r.Validate(); fields != nil {
		return nil, apperrors.Validation(fields)
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 图书必须存在（同时持有行锁，删除图书会等待本事务结束）
		if _, err := s.books.LockByID(ctx, r.BookID); err != nil {
			return err
		}

		// 2. 唯一性：预检 + 唯一索引兜底
		if err := s.guard.Admit(ctx, r.BookID, r.UserID); err != nil {
			return err
		}
		if err := s.guard.Insert(ctx, r); err != nil {
			return err
		}

		// 3. 重算评分
		summary, err := s.aggregator.Recompute(ctx, r.BookID)
		if err != nil {
			return err
		}

		created, err := s.reviews.FindByID(ctx, r.ID)
		if err != nil {
			return err
		}
		result = &Result{Review: created, Rating: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update 修改书评（只允许修改评分和内容）
func (s *service) Update(ctx context.Context, id, actingUserID uint, update Update) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "review", "ReviewService.Update")
	span.SetAttributes(attribute.Int64("review.id", int64(id)))
	defer func() {
		s.record("update", err)
		tracing.EndSpan(span, err)
	}()

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		r, err := s.resolve(ctx, id, actingUserID)
		if err != nil {
			return err
		}
		if update.Empty() {
			return ErrNoFieldsToUpdate
		}

		r.Apply(update)
		if fields := r.Validate(); fields != nil {
			return apperrors.Validation(fields)
		}

		if _, err := s.books.LockByID(ctx, r.BookID); err != nil {
			return err
		}
		if err := s.reviews.Update(ctx, r); err != nil {
			return err
		}

		summary, err := s.aggregator.Recompute(ctx, r.BookID)
		if err != nil {
			return err
		}
		result = &Result{Review: r, Rating: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete 删除书评，随后重算所属图书的评分
func (s *service) Delete(ctx context.Context, id, actingUserID uint) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "review", "ReviewService.Delete")
	span.SetAttributes(attribute.Int64("review.id", int64(id)))
	defer func() {
		s.record("delete", err)
		tracing.EndSpan(span, err)
	}()

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		r, err := s.resolve(ctx, id, actingUserID)
		if err != nil {
			return err
		}

		if _, err := s.books.LockByID(ctx, r.BookID); err != nil {
			return err
		}
		if err := s.reviews.Delete(ctx, r.ID); err != nil {
			return err
		}

		summary, err := s.aggregator.Recompute(ctx, r.BookID)
		if err != nil {
			return err
		}
		result = &Result{Review: r, Rating: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListByBook 某本书的书评
func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Review, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	return s.reviews.ListByBook(ctx, bookID)
}

// ListByUser 某用户的书评
func (s *service) ListByUser(ctx context.Context, userID uint) ([]*Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// resolve 存在性 → 归属
func (s *service) resolve(ctx context.Context, id, actingUserID uint) (*Review, error) {
	return ownership.Resolve(ctx, actingUserID, func(ctx context.Context) (*Review, error) {
		return s.reviews.FindByID(ctx, id)
	})
}

func (s *service) record(operation string, err error) {
	metrics.IncCounterVec(metrics.ReviewMutationsTotal, map[string]string{
		"operation": operation,
		"result":    metrics.ResultLabel(err),
	})
}
