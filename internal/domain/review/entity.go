package review

import (
	"strings"
	"time"
)

// 评分范围
const (
	MinRating = 1
	MaxRating = 5
)

// Review 书评实体
// BookID与UserID创建后不可变更，(BookID, UserID)全局唯一
type Review struct {
	ID         uint
	BookID     uint
	UserID     uint
	Rating     int
	ReviewText string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// 以下字段只读，由仓储查询时关联填充
	ReviewerName string
	BookTitle    string
	BookAuthor   string
}

// NewReview 创建书评（工厂方法）
func NewReview(bookID, userID uint, rating int, reviewText string) *Review {
	now := time.Now()
	return &Review{
		BookID:     bookID,
		UserID:     userID,
		Rating:     rating,
		ReviewText: strings.TrimSpace(reviewText),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// OwnerID 实现ownership.Owned
func (r *Review) OwnerID() uint {
	return r.UserID
}

// Update 可修改字段，nil表示不修改
type Update struct {
	Rating     *int
	ReviewText *string
}

// Empty 没有任何待修改字段
func (u Update) Empty() bool {
	return u.Rating == nil && u.ReviewText == nil
}

// Apply 应用修改（调用前需通过Validate）
func (r *Review) Apply(u Update) {
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
	if u.ReviewText != nil {
		r.ReviewText = strings.TrimSpace(*u.ReviewText)
	}
	r.UpdatedAt = time.Now()
}

// Validate 字段校验，返回字段名 → 提示信息（nil表示通过）
func (r *Review) Validate() map[string]string {
	fields := make(map[string]string)
	if r.BookID == 0 {
		fields["bookId"] = "图书ID不能为空"
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		fields["rating"] = "评分必须在1到5之间"
	}
	if r.ReviewText == "" {
		fields["reviewText"] = "书评内容不能为空"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
