package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// ReviewHandler 书评HTTP处理器
type ReviewHandler struct {
	createReview    *appreview.CreateReviewUseCase
	updateReview    *appreview.UpdateReviewUseCase
	deleteReview    *appreview.DeleteReviewUseCase
	listBookReviews *appreview.ListBookReviewsUseCase
	listUserReviews *appreview.ListUserReviewsUseCase
}

// NewReviewHandler 创建书评处理器
func NewReviewHandler(
	createReview *appreview.CreateReviewUseCase,
	updateReview *appreview.UpdateReviewUseCase,
	deleteReview *appreview.DeleteReviewUseCase,
	listBookReviews *appreview.ListBookReviewsUseCase,
	listUserReviews *appreview.ListUserReviewsUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createReview:    createReview,
		updateReview:    updateReview,
		deleteReview:    deleteReview,
		listBookReviews: listBookReviews,
		listUserReviews: listUserReviews,
	}
}

// ListBookReviews 某本书的书评
// @Summary      图书书评列表
// @Description  按发表时间倒序，带评论者姓名
// @Tags         书评
// @Produce      json
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=[]appreview.ReviewResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/reviews/book/{bookId} [get]
func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	bookID, err := pathID(c, "bookId", book.ErrBookNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.listBookReviews.Execute(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithCount(c, result, len(result))
}

// CreateReview 发表书评
// @Summary      发表书评
// @Description  每个用户对同一本书只能发表一条书评；成功后重算图书评分
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateReviewRequest true "书评"
// @Success      201 {object} response.Response{data=appreview.MutationResponse}
// @Failure      400 {object} response.Response "参数错误或重复书评"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      500 {object} response.Response "评分重算失败"
// @Router       /api/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.createReview.Execute(c.Request.Context(), appreview.CreateReviewRequest{
		BookID:     req.BookID,
		UserID:     middleware.MustGetUserID(c),
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateReview 修改书评
// @Summary      修改书评
// @Description  只有作者本人可以修改；修改后重算图书评分
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "书评ID"
// @Param        request body dto.UpdateReviewRequest true "需要修改的字段"
// @Success      200 {object} response.Response{data=appreview.MutationResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, err := pathID(c, "id", review.ErrReviewNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.updateReview.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		ID:           id,
		ActingUserID: middleware.MustGetUserID(c),
		Rating:       req.Rating,
		ReviewText:   req.ReviewText,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview 删除书评
// @Summary      删除书评
// @Description  只有作者本人可以删除；删除后重算图书评分
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response{data=appreview.MutationResponse}
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, err := pathID(c, "id", review.ErrReviewNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.deleteReview.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "书评已删除", result)
}

// ListMyReviews 我的书评
// @Summary      我的书评
// @Description  按发表时间倒序，带图书标题与作者
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appreview.ReviewResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/reviews/user [get]
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	result, err := h.listUserReviews.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithCount(c, result, len(result))
}
