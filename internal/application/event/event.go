// Package event 领域事件
//
// 事件在事务提交之后发布，发布失败只记录日志，不影响请求结果：
// 评分与书评的一致性由数据库事务保证，事件只用于通知下游（推荐、统计等）。
package event

import (
	"context"
	"log/slog"
	"time"
)

// 路由键（topic exchange）
const (
	RoutingReviewCreated     = "review.created"
	RoutingReviewUpdated     = "review.updated"
	RoutingReviewDeleted     = "review.deleted"
	RoutingBookDeleted       = "book.deleted"
	RoutingBookRatingChanged = "book.rating_changed"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// ReviewChanged 书评创建/修改/删除
type ReviewChanged struct {
	ReviewID   uint      `json:"reviewId"`
	BookID     uint      `json:"bookId"`
	UserID     uint      `json:"userId"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RatingChanged 图书评分重算完成
type RatingChanged struct {
	BookID        uint      `json:"bookId"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// BookDeleted 图书及其书评已删除
type BookDeleted struct {
	BookID         uint      `json:"bookId"`
	DeletedBy      uint      `json:"deletedBy"`
	ReviewsRemoved int64     `json:"reviewsRemoved"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Emit 发布事件，失败只记录WARN日志
func Emit(ctx context.Context, p Publisher, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		slog.WarnContext(ctx, "领域事件发布失败", "routing_key", routingKey, "error", err)
	}
}
