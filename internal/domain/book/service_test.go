package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/ownership"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/testutil/memstore"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func setup(t *testing.T) (*memstore.Store, book.Service, uint, uint) {
	t.Helper()
	store := memstore.New()
	owner := store.SeedUser("Owner", "owner@example.com")
	other := store.SeedUser("Other", "other@example.com")
	return store, book.NewService(store.Books(), store.Reviews(), store), owner, other
}

func validParams(owner uint) book.CreateParams {
	return book.CreateParams{
		Title:         "Dune",
		Author:        "Frank Herbert",
		Description:   "Desert planet",
		Genre:         book.GenreScienceFiction,
		PublishedYear: 1965,
		AddedBy:       owner,
	}
}

func TestCreateBook(t *testing.T) {
	_, svc, owner, _ := setup(t)

	b, err := svc.CreateBook(context.Background(), validParams(owner))

	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, owner, b.AddedBy)
	assert.Equal(t, "Owner", b.AddedByName)
	assert.Zero(t, b.AverageRating)
	assert.Zero(t, b.ReviewCount)
}

func TestCreateBook_Validation(t *testing.T) {
	_, svc, owner, _ := setup(t)
	nextYear := time.Now().Year() + 1

	tests := []struct {
		name   string
		mutate func(p *book.CreateParams)
		field  string
	}{
		{"书名为空", func(p *book.CreateParams) { p.Title = "  " }, "title"},
		{"作者为空", func(p *book.CreateParams) { p.Author = "" }, "author"},
		{"简介为空", func(p *book.CreateParams) { p.Description = "" }, "description"},
		{"非法分类", func(p *book.CreateParams) { p.Genre = "Poetry" }, "genre"},
		{"分类大小写不符", func(p *book.CreateParams) { p.Genre = "fiction" }, "genre"},
		{"年份过早", func(p *book.CreateParams) { p.PublishedYear = 999 }, "publishedYear"},
		{"年份晚于今年", func(p *book.CreateParams) { p.PublishedYear = nextYear }, "publishedYear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams(owner)
			tt.mutate(&p)

			_, err := svc.CreateBook(context.Background(), p)

			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, 400, appErr.HTTPStatus())
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestCreateBook_YearBounds(t *testing.T) {
	_, svc, owner, _ := setup(t)

	for _, year := range []int{book.MinPublishedYear, time.Now().Year()} {
		p := validParams(owner)
		p.PublishedYear = year
		_, err := svc.CreateBook(context.Background(), p)
		assert.NoError(t, err, "year=%d", year)
	}
}

func TestUpdateBook(t *testing.T) {
	_, svc, owner, other := setup(t)
	ctx := context.Background()
	b, err := svc.CreateBook(ctx, validParams(owner))
	require.NoError(t, err)

	title := "Dune Messiah"
	year := 1969

	t.Run("不存在优先于无权限", func(t *testing.T) {
		_, err := svc.UpdateBook(ctx, 9999, other, book.Update{Title: &title})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("非所有者", func(t *testing.T) {
		_, err := svc.UpdateBook(ctx, b.ID, other, book.Update{Title: &title})
		assert.ErrorIs(t, err, ownership.ErrForbidden)

		got, err := svc.GetBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
	})

	t.Run("空更新", func(t *testing.T) {
		_, err := svc.UpdateBook(ctx, b.ID, owner, book.Update{})
		assert.ErrorIs(t, err, book.ErrNoFieldsToUpdate)
	})

	t.Run("部分更新", func(t *testing.T) {
		updated, err := svc.UpdateBook(ctx, b.ID, owner, book.Update{Title: &title, PublishedYear: &year})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, 1969, updated.PublishedYear)
		assert.Equal(t, "Frank Herbert", updated.Author)
	})

	t.Run("非法值不落库", func(t *testing.T) {
		bad := book.Genre("Poetry")
		_, err := svc.UpdateBook(ctx, b.ID, owner, book.Update{Genre: &bad})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, apperrors.GetAppError(err).Code)

		got, err := svc.GetBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, book.GenreScienceFiction, got.Genre)
	})
}

// TestUpdateBook_KeepsRating 修改描述字段不会覆盖评分
func TestUpdateBook_KeepsRating(t *testing.T) {
	store, svc, owner, other := setup(t)
	ctx := context.Background()
	b, err := svc.CreateBook(ctx, validParams(owner))
	require.NoError(t, err)

	reviews := review.NewService(store.Reviews(), store.Books(), rating.NewAggregator(store.Reviews(), store.Books()), store)
	_, err = reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: other, Rating: 5, ReviewText: "classic"})
	require.NoError(t, err)

	desc := "Spice must flow"
	updated, err := svc.UpdateBook(ctx, b.ID, owner, book.Update{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.AverageRating)

	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, desc, got.Description)
}

func TestDeleteBook_Cascade(t *testing.T) {
	store, svc, owner, other := setup(t)
	ctx := context.Background()
	reviews := review.NewService(store.Reviews(), store.Books(), rating.NewAggregator(store.Reviews(), store.Books()), store)

	b, err := svc.CreateBook(ctx, validParams(owner))
	require.NoError(t, err)
	keep, err := svc.CreateBook(ctx, validParams(owner))
	require.NoError(t, err)

	for _, uid := range []uint{owner, other} {
		_, err := reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: uid, Rating: 3, ReviewText: "meh"})
		require.NoError(t, err)
	}
	_, err = reviews.Create(ctx, review.CreateParams{BookID: keep.ID, UserID: other, Rating: 5, ReviewText: "keep"})
	require.NoError(t, err)

	t.Run("非所有者不能删除", func(t *testing.T) {
		_, err := svc.DeleteBook(ctx, b.ID, other)
		assert.ErrorIs(t, err, ownership.ErrForbidden)
		assert.Equal(t, 3, store.ReviewCount())
	})

	t.Run("所有者删除并级联", func(t *testing.T) {
		removed, err := svc.DeleteBook(ctx, b.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)
		assert.Equal(t, 1, store.ReviewCount())

		_, err = svc.GetBook(ctx, b.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("重复删除返回404", func(t *testing.T) {
		_, err := svc.DeleteBook(ctx, b.ID, owner)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestListBooks(t *testing.T) {
	_, svc, owner, other := setup(t)
	ctx := context.Background()

	seed := []book.CreateParams{
		{Title: "Gone Girl", Author: "Gillian Flynn", Description: "d", Genre: book.GenreThriller, PublishedYear: 2012, AddedBy: owner},
		{Title: "Emma", Author: "Jane Austen", Description: "d", Genre: book.GenreRomance, PublishedYear: 1815, AddedBy: owner},
		{Title: "Persuasion", Author: "Jane Austen", Description: "d", Genre: book.GenreRomance, PublishedYear: 1817, AddedBy: other},
	}
	for _, p := range seed {
		_, err := svc.CreateBook(ctx, p)
		require.NoError(t, err)
	}

	t.Run("默认最新在前", func(t *testing.T) {
		books, total, err := svc.ListBooks(ctx, book.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, "Persuasion", books[0].Title)
	})

	t.Run("作者搜索不区分大小写", func(t *testing.T) {
		books, total, err := svc.ListBooks(ctx, book.ListParams{Search: "austen"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, books, 2)
	})

	t.Run("分类与年份排序", func(t *testing.T) {
		books, _, err := svc.ListBooks(ctx, book.ListParams{Genre: book.GenreRomance, Sort: book.SortYear})
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, 1817, books[0].PublishedYear)
	})

	t.Run("分页", func(t *testing.T) {
		books, total, err := svc.ListBooks(ctx, book.ListParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, books, 1)
	})

	t.Run("我的图书", func(t *testing.T) {
		books, err := svc.ListUserBooks(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})
}
