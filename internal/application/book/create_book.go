package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

// CreateBookUseCase 添加图书用例
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建添加图书用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 添加图书请求
type CreateBookRequest struct {
	Title         string
	Author        string
	Description   string
	Genre         string
	PublishedYear int
	AddedBy       uint // 当前登录用户，由Handler从认证上下文注入
}

// Execute 执行添加
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.CreateBook(ctx, book.CreateParams{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Genre:         book.Genre(req.Genre),
		PublishedYear: req.PublishedYear,
		AddedBy:       req.AddedBy,
	})
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
