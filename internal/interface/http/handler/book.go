package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBook    *appbook.CreateBookUseCase
	getBook       *appbook.GetBookUseCase
	updateBook    *appbook.UpdateBookUseCase
	deleteBook    *appbook.DeleteBookUseCase
	listBooks     *appbook.ListBooksUseCase
	listUserBooks *appbook.ListUserBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBook *appbook.CreateBookUseCase,
	getBook *appbook.GetBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	listBooks *appbook.ListBooksUseCase,
	listUserBooks *appbook.ListUserBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBook:    createBook,
		getBook:       getBook,
		updateBook:    updateBook,
		deleteBook:    deleteBook,
		listBooks:     listBooks,
		listUserBooks: listUserBooks,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询，支持书名/作者模糊搜索、分类过滤与排序
// @Tags         图书
// @Produce      json
// @Param        search query string false "书名或作者"
// @Param        genre  query string false "分类"
// @Param        sort   query string false "排序 newest|year|rating"
// @Param        page   query int    false "页码" default(1)
// @Param        limit  query int    false "每页数量" default(9)
// @Success      200 {object} response.PageResponse{data=[]appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.Limit,
		Search:   req.Search,
		Genre:    req.Genre,
		Sort:     req.Sort,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Books, len(result.Books), result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id", book.ErrBookNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBook 添加图书
// @Summary      添加图书
// @Description  添加者为当前登录用户，评分初始为0
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Genre:         req.Genre,
		PublishedYear: req.PublishedYear,
		AddedBy:       middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  只有添加者本人可以修改；评分字段不可修改
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "需要修改的字段"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := pathID(c, "id", book.ErrBookNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:            id,
		ActingUserID:  middleware.MustGetUserID(c),
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Genre:         req.Genre,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  同时删除该书的全部书评
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.DeleteBookResponse}
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := pathID(c, "id", book.ErrBookNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.deleteBook.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "图书已删除", result)
}

// ListMyBooks 我添加的图书
// @Summary      我添加的图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.BookResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/books/user/me [get]
func (h *BookHandler) ListMyBooks(c *gin.Context) {
	result, err := h.listUserBooks.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithCount(c, result, len(result))
}
