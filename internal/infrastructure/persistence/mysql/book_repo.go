package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/book"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 数据库错误统一转换为StoreUnavailable,不向客户端暴露细节
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// ownerColumns 关联查询添加者时只取需要的列(不加载密码)
func ownerColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		Genre:         string(b.Genre),
		PublishedYear: b.PublishedYear,
		AddedBy:       b.AddedBy,
	}

	db := getDB(ctx, r.db)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.StoreUnavailable(err, "创建图书失败")
	}

	b.ID = model.ID
	b.AverageRating = 0
	b.ReviewCount = 0
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	var owner UserModel
	if err := db.Scopes(ownerColumns).First(&owner, b.AddedBy).Error; err == nil {
		b.AddedByName = owner.Name
	}
	return nil
}

// FindByID 根据ID查找图书(含添加者姓名)
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Preload("Owner", ownerColumns).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.StoreUnavailable(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// LockByID 悲观锁查询图书
// SELECT ... FOR UPDATE 必须在TxManager开启的事务中调用,否则锁在语句结束时立即释放
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.StoreUnavailable(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 只更新描述性字段
// 使用Select显式限定列,即使实体上的评分字段被篡改也不会写入
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	now := time.Now()
	result := getDB(ctx, r.db).Model(&BookModel{ID: b.ID}).
		Select("title", "author", "description", "genre", "published_year", "updated_at").
		Updates(&BookModel{
			Title:         b.Title,
			Author:        b.Author,
			Description:   b.Description,
			Genre:         string(b.Genre),
			PublishedYear: b.PublishedYear,
			UpdatedAt:     now,
		})
	if result.Error != nil {
		return apperrors.StoreUnavailable(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	b.UpdatedAt = now
	return nil
}

// Delete 物理删除图书
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.StoreUnavailable(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params.Normalize()

	query := getDB(ctx, r.db).Model(&BookModel{})

	// 书名或作者模糊匹配,统一转小写,不依赖列的排序规则
	if params.Search != "" {
		keyword := "%" + escapeLike(strings.ToLower(params.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", keyword, keyword)
	}
	if params.Genre != "" {
		query = query.Where("genre = ?", string(params.Genre))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.StoreUnavailable(err, "查询图书总数失败")
	}

	var models []BookModel
	err := query.Preload("Owner", ownerColumns).
		Order(orderBy(params.Sort)).
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.StoreUnavailable(err, "查询图书列表失败")
	}

	return toBookEntities(models), total, nil
}

// ListByOwner 某用户添加的图书,最新在前
func (r *bookRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*book.Book, error) {
	var models []BookModel
	err := getDB(ctx, r.db).Preload("Owner", ownerColumns).
		Where("added_by = ?", ownerID).
		Order(orderBy(book.SortNewest)).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.StoreUnavailable(err, "查询用户图书失败")
	}
	return toBookEntities(models), nil
}

// UpdateRating 写回派生评分字段
// UpdateColumns不触发updated_at;图书已被删除时影响行数为0,视为成功
func (r *bookRepository) UpdateRating(ctx context.Context, id uint, averageRating float64, reviewCount int) error {
	err := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"average_rating": averageRating,
			"review_count":   reviewCount,
		}).Error
	if err != nil {
		return apperrors.StoreUnavailable(err, "更新图书评分失败")
	}
	return nil
}

// orderBy 排序子句,id作为第二排序键保证分页稳定
func orderBy(sort book.SortOrder) string {
	switch sort {
	case book.SortYear:
		return "published_year DESC, id DESC"
	case book.SortRating:
		return "average_rating DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		Title:         model.Title,
		Author:        model.Author,
		Description:   model.Description,
		Genre:         book.Genre(model.Genre),
		PublishedYear: model.PublishedYear,
		AddedBy:       model.AddedBy,
		AddedByName:   model.Owner.Name,
		AverageRating: model.AverageRating,
		ReviewCount:   model.ReviewCount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
