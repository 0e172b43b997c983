package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/shared"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// reviewRepository 书评仓储实现(MySQL)
// 设计说明:
// 1. (book_id,user_id)唯一索引冲突转换为shared.ErrDuplicateKey,由领域层映射为"已评价"
// 2. ListRatingsByBook使用FOR SHARE读取最新已提交数据,不受REPEATABLE READ快照影响
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建书评仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

func bookColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "author")
}

// Create 创建书评
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		BookID:     rv.BookID,
		UserID:     rv.UserID,
		Rating:     rv.Rating,
		ReviewText: rv.ReviewText,
	}

	if err := getDB(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("创建书评失败: %w", shared.ErrDuplicateKey)
		}
		if isForeignKeyError(err) {
			return book.ErrBookNotFound
		}
		return apperrors.StoreUnavailable(err, "创建书评失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找书评(含评论者姓名、书名)
func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	err := getDB(ctx, r.db).
		Preload("User", ownerColumns).
		Preload("Book", bookColumns).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.StoreUnavailable(err, "查询书评失败")
	}
	return toReviewEntity(&model), nil
}

// ExistsByBookAndUser 唯一性预检
func (r *reviewRepository) ExistsByBookAndUser(ctx context.Context, bookID, userID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&ReviewModel{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.StoreUnavailable(err, "查询书评失败")
	}
	return count > 0, nil
}

// Update 只更新评分和内容
// 影响行数按匹配行计算(DSN开启clientFoundRows),内容未变化也不会误判为不存在
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	now := time.Now()
	result := getDB(ctx, r.db).Model(&ReviewModel{ID: rv.ID}).
		Select("rating", "review_text", "updated_at").
		Updates(&ReviewModel{
			Rating:     rv.Rating,
			ReviewText: rv.ReviewText,
			UpdatedAt:  now,
		})
	if result.Error != nil {
		return apperrors.StoreUnavailable(result.Error, "更新书评失败")
	}
	// 读取之后被并发删除
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	rv.UpdatedAt = now
	return nil
}

// Delete 物理删除书评
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.StoreUnavailable(result.Error, "删除书评失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// DeleteByBook 删除某本书的全部书评
func (r *reviewRepository) DeleteByBook(ctx context.Context, bookID uint) (int64, error) {
	result := getDB(ctx, r.db).Where("book_id = ?", bookID).Delete(&ReviewModel{})
	if result.Error != nil {
		return 0, apperrors.StoreUnavailable(result.Error, "删除图书书评失败")
	}
	return result.RowsAffected, nil
}

// ListByBook 某本书的书评,最新在前
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	var models []ReviewModel
	err := getDB(ctx, r.db).
		Preload("User", ownerColumns).
		Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.StoreUnavailable(err, "查询书评列表失败")
	}
	return toReviewEntities(models), nil
}

// ListByUser 某用户的书评,最新在前
func (r *reviewRepository) ListByUser(ctx context.Context, userID uint) ([]*review.Review, error) {
	var models []ReviewModel
	err := getDB(ctx, r.db).
		Preload("Book", bookColumns).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.StoreUnavailable(err, "查询用户书评失败")
	}
	return toReviewEntities(models), nil
}

// ListRatingsByBook 某本书当前全部评分
// SELECT rating FROM reviews WHERE book_id = ? FOR SHARE
func (r *reviewRepository) ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error) {
	ratings := []int{}
	err := getDB(ctx, r.db).Model(&ReviewModel{}).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("book_id = ?", bookID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, apperrors.StoreUnavailable(err, "读取评分失败")
	}
	return ratings, nil
}

// toReviewEntity GORM模型 → 领域实体
func toReviewEntity(model *ReviewModel) *review.Review {
	return &review.Review{
		ID:           model.ID,
		BookID:       model.BookID,
		UserID:       model.UserID,
		Rating:       model.Rating,
		ReviewText:   model.ReviewText,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		ReviewerName: model.User.Name,
		BookTitle:    model.Book.Title,
		BookAuthor:   model.Book.Author,
	}
}

func toReviewEntities(models []ReviewModel) []*review.Review {
	reviews := make([]*review.Review, len(models))
	for i := range models {
		reviews[i] = toReviewEntity(&models[i])
	}
	return reviews
}
