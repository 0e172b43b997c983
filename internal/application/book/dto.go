package book

import (
	"time"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

// =========================================
// 应用层DTO
// =========================================

// BookResponse 图书详情
// 说明：averageRating/reviewCount只读，由评分重算维护
type BookResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Genre         string    `json:"genre"`
	PublishedYear int       `json:"publishedYear"`
	AddedBy       UserRef   `json:"addedBy"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserRef 图书添加者
type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

// ListBooksResponse 分页结果
type ListBooksResponse struct {
	Books    []*BookResponse
	Total    int64
	Page     int
	PageSize int
}

// toBookResponse 领域实体 → 应用层DTO
func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		Genre:         string(b.Genre),
		PublishedYear: b.PublishedYear,
		AddedBy:       UserRef{ID: b.AddedBy, Name: b.AddedByName},
		AverageRating: b.AverageRating,
		ReviewCount:   b.ReviewCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookResponses(books []*book.Book) []*BookResponse {
	list := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		list = append(list, toBookResponse(b))
	}
	return list
}
