package review

import (
	"time"

	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// ReviewResponse 书评
// 按书查询时带评论者姓名，按用户查询时带图书标题与作者
type ReviewResponse struct {
	ID         uint      `json:"id"`
	BookID     uint      `json:"bookId"`
	UserID     uint      `json:"userId"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	Reviewer   string    `json:"reviewerName,omitempty"`
	BookTitle  string    `json:"bookTitle,omitempty"`
	BookAuthor string    `json:"bookAuthor,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MutationResponse 书评变更结果，附带重算后的图书评分
type MutationResponse struct {
	Review     *ReviewResponse `json:"review"`
	BookRating rating.Summary  `json:"bookRating"`
}

func toReviewResponse(r *review.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
		Reviewer:   r.ReviewerName,
		BookTitle:  r.BookTitle,
		BookAuthor: r.BookAuthor,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toReviewResponses(reviews []*review.Review) []*ReviewResponse {
	list := make([]*ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		list = append(list, toReviewResponse(r))
	}
	return list
}
