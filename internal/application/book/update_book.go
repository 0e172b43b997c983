package book

import (
	"context"
	"time"

	"github.com/xiebiao/bookreview/internal/application/event"
	"github.com/xiebiao/bookreview/internal/domain/book"
)

// UpdateBookUseCase 修改图书用例（仅添加者本人）
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建修改图书用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 部分更新，nil表示不修改
type UpdateBookRequest struct {
	ID            uint
	ActingUserID  uint
	Title         *string
	Author        *string
	Description   *string
	Genre         *string
	PublishedYear *int
}

// Execute 执行修改
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookResponse, error) {
	update := book.Update{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
	}
	if req.Genre != nil {
		g := book.Genre(*req.Genre)
		update.Genre = &g
	}

	b, err := uc.bookService.UpdateBook(ctx, req.ID, req.ActingUserID, update)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// DeleteBookUseCase 删除图书用例
// 图书与其全部书评在同一事务内删除，提交后发布book.deleted事件
type DeleteBookUseCase struct {
	bookService book.Service
	publisher   event.Publisher
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(bookService book.Service, publisher event.Publisher) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		publisher:   publisher,
	}
}

// DeleteBookResponse 删除结果
type DeleteBookResponse struct {
	BookID         uint  `json:"bookId"`
	ReviewsRemoved int64 `json:"reviewsRemoved"`
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id, actingUserID uint) (*DeleteBookResponse, error) {
	removed, err := uc.bookService.DeleteBook(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}

	event.Emit(ctx, uc.publisher, event.RoutingBookDeleted, event.BookDeleted{
		BookID:         id,
		DeletedBy:      actingUserID,
		ReviewsRemoved: removed,
		OccurredAt:     time.Now(),
	})

	return &DeleteBookResponse{BookID: id, ReviewsRemoved: removed}, nil
}
