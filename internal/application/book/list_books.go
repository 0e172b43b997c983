package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

// ListBooksUseCase 图书列表用例（公开）
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建图书列表用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询条件
type ListBooksRequest struct {
	Page     int
	PageSize int
	Search   string
	Genre    string
	Sort     string
}

// Execute 执行查询
// 分页参数在领域层归一化，返回值中的Page/PageSize是归一化之后的值
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	params := book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Genre:    book.Genre(req.Genre),
		Sort:     book.SortOrder(req.Sort),
	}
	params.Normalize()

	books, total, err := uc.bookService.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ListBooksResponse{
		Books:    toBookResponses(books),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建图书详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询单本图书，不存在返回ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// ListUserBooksUseCase 我添加的图书
type ListUserBooksUseCase struct {
	bookService book.Service
}

// NewListUserBooksUseCase 创建用例
func NewListUserBooksUseCase(bookService book.Service) *ListUserBooksUseCase {
	return &ListUserBooksUseCase{bookService: bookService}
}

// Execute 按创建时间倒序返回
func (uc *ListUserBooksUseCase) Execute(ctx context.Context, userID uint) ([]*BookResponse, error) {
	books, err := uc.bookService.ListUserBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toBookResponses(books), nil
}
