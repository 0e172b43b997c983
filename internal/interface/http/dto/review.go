package dto

// CreateReviewRequest HTTP发表书评请求
type CreateReviewRequest struct {
	BookID     uint   `json:"bookId" binding:"required" example:"1"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5" example:"4"`
	ReviewText string `json:"reviewText" binding:"required,max=5000" example:"Worth every page"`
}

// UpdateReviewRequest HTTP修改书评请求（部分更新）
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating" binding:"omitempty,min=1,max=5" example:"5"`
	ReviewText *string `json:"reviewText" binding:"omitempty,max=5000"`
}
