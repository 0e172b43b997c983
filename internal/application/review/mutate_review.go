package review

import (
	"context"
	"time"

	"github.com/xiebiao/bookreview/internal/application/event"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// CreateReviewUseCase 发表书评用例
// 书评写入与评分重算在领域服务的同一事务内完成，提交后再发布事件
type CreateReviewUseCase struct {
	reviewService review.Service
	publisher     event.Publisher
}

// NewCreateReviewUseCase 创建发表书评用例
func NewCreateReviewUseCase(reviewService review.Service, publisher event.Publisher) *CreateReviewUseCase {
	return &CreateReviewUseCase{reviewService: reviewService, publisher: publisher}
}

// CreateReviewRequest 发表书评请求
type CreateReviewRequest struct {
	BookID     uint
	UserID     uint
	Rating     int
	ReviewText string
}

// Execute 执行发表
func (uc *CreateReviewUseCase) Execute(ctx context.Context, req CreateReviewRequest) (*MutationResponse, error) {
	result, err := uc.reviewService.Create(ctx, review.CreateParams{
		BookID:     req.BookID,
		UserID:     req.UserID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, event.RoutingReviewCreated, result)
	return toMutationResponse(result), nil
}

// UpdateReviewUseCase 修改书评用例（仅作者本人）
type UpdateReviewUseCase struct {
	reviewService review.Service
	publisher     event.Publisher
}

// NewUpdateReviewUseCase 创建修改书评用例
func NewUpdateReviewUseCase(reviewService review.Service, publisher event.Publisher) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{reviewService: reviewService, publisher: publisher}
}

// UpdateReviewRequest 部分更新，nil表示不修改
type UpdateReviewRequest struct {
	ID           uint
	ActingUserID uint
	Rating       *int
	ReviewText   *string
}

// Execute 执行修改
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (*MutationResponse, error) {
	result, err := uc.reviewService.Update(ctx, req.ID, req.ActingUserID, review.Update{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, event.RoutingReviewUpdated, result)
	return toMutationResponse(result), nil
}

// DeleteReviewUseCase 删除书评用例（仅作者本人）
type DeleteReviewUseCase struct {
	reviewService review.Service
	publisher     event.Publisher
}

// NewDeleteReviewUseCase 创建删除书评用例
func NewDeleteReviewUseCase(reviewService review.Service, publisher event.Publisher) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{reviewService: reviewService, publisher: publisher}
}

// Execute 执行删除
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, id, actingUserID uint) (*MutationResponse, error) {
	result, err := uc.reviewService.Delete(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, event.RoutingReviewDeleted, result)
	return toMutationResponse(result), nil
}

// publish 书评事件 + 评分变更事件
func publish(ctx context.Context, p event.Publisher, routingKey string, result *review.Result) {
	now := time.Now()
	r := result.Review

	event.Emit(ctx, p, routingKey, event.ReviewChanged{
		ReviewID:   r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: now,
	})
	event.Emit(ctx, p, event.RoutingBookRatingChanged, event.RatingChanged{
		BookID:        r.BookID,
		AverageRating: result.Rating.AverageRating,
		ReviewCount:   result.Rating.ReviewCount,
		OccurredAt:    now,
	})
}

func toMutationResponse(result *review.Result) *MutationResponse {
	return &MutationResponse{
		Review:     toReviewResponse(result.Review),
		BookRating: result.Rating,
	}
}
