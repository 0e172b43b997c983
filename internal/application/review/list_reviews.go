package review

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/review"
)

// ListBookReviewsUseCase 某本书的书评（公开）
type ListBookReviewsUseCase struct {
	reviewService review.Service
}

// NewListBookReviewsUseCase 创建用例
func NewListBookReviewsUseCase(reviewService review.Service) *ListBookReviewsUseCase {
	return &ListBookReviewsUseCase{reviewService: reviewService}
}

// Execute 按创建时间倒序，图书不存在返回ErrBookNotFound
func (uc *ListBookReviewsUseCase) Execute(ctx context.Context, bookID uint) ([]*ReviewResponse, error) {
	reviews, err := uc.reviewService.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toReviewResponses(reviews), nil
}

// ListUserReviewsUseCase 我的书评
type ListUserReviewsUseCase struct {
	reviewService review.Service
}

// NewListUserReviewsUseCase 创建用例
func NewListUserReviewsUseCase(reviewService review.Service) *ListUserReviewsUseCase {
	return &ListUserReviewsUseCase{reviewService: reviewService}
}

// Execute 按创建时间倒序
func (uc *ListUserReviewsUseCase) Execute(ctx context.Context, userID uint) ([]*ReviewResponse, error) {
	reviews, err := uc.reviewService.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toReviewResponses(reviews), nil
}
