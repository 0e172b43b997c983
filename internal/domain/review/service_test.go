package review_test

import (
	"context"
	"errors"
	"sync"
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

type fixture struct {
	store   *memstore.Store
	books   book.Service
	reviews review.Service
	owner   uint
	alice   uint
	carol   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	agg := rating.NewAggregator(store.Reviews(), store.Books())
	return &fixture{
		store:   store,
		books:   book.NewService(store.Books(), store.Reviews(), store),
		reviews: review.NewService(store.Reviews(), store.Books(), agg, store),
		owner:   store.SeedUser("Owner", "owner@example.com"),
		alice:   store.SeedUser("Alice", "alice@example.com"),
		carol:   store.SeedUser("Carol", "carol@example.com"),
	}
}

func (f *fixture) createBook(t *testing.T) *book.Book {
	t.Helper()
	b, err := f.books.CreateBook(context.Background(), book.CreateParams{
		Title:         "The Pragmatic Programmer",
		Author:        "Hunt & Thomas",
		Description:   "Journey to mastery",
		Genre:         book.GenreNonFiction,
		PublishedYear: 1999,
		AddedBy:       f.owner,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) assertRating(t *testing.T, bookID uint, avg float64, count int) {
	t.Helper()
	b, err := f.books.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, avg, b.AverageRating)
	assert.Equal(t, count, b.ReviewCount)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// TestReviewLifecycle_Scenario 4.0 → 4.5 → 3.5 → 2.0
func TestReviewLifecycle_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)
	f.assertRating(t, b.ID, 0, 0)

	ra, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "Solid"})
	require.NoError(t, err)
	assert.Equal(t, rating.Summary{AverageRating: 4.0, ReviewCount: 1}, ra.Rating)
	assert.Equal(t, "Alice", ra.Review.ReviewerName)
	f.assertRating(t, b.ID, 4.0, 1)

	rc, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.carol, Rating: 5, ReviewText: "Great"})
	require.NoError(t, err)
	f.assertRating(t, b.ID, 4.5, 2)

	updated, err := f.reviews.Update(ctx, ra.Review.ID, f.alice, review.Update{Rating: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Review.Rating)
	assert.Equal(t, "Solid", updated.Review.ReviewText)
	f.assertRating(t, b.ID, 3.5, 2)

	deleted, err := f.reviews.Delete(ctx, rc.Review.ID, f.carol)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.Review.BookID)
	assert.Equal(t, rating.Summary{AverageRating: 2.0, ReviewCount: 1}, deleted.Rating)
	f.assertRating(t, b.ID, 2.0, 1)

	// 同一用户第二次评价：冲突，评分不变
	_, err = f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 5, ReviewText: "Again"})
	assert.ErrorIs(t, err, review.ErrAlreadyReviewed)
	assert.Equal(t, 400, apperrors.GetAppError(err).HTTPStatus())
	f.assertRating(t, b.ID, 2.0, 1)

	// 删除图书：书评一并删除，之后查询404
	removed, err := f.books.DeleteBook(ctx, b.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Zero(t, f.store.ReviewCount())
	_, err = f.books.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestCreate_BookNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.reviews.Create(context.Background(), review.CreateParams{BookID: 404, UserID: f.alice, Rating: 3, ReviewText: "?"})

	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Zero(t, f.store.ReviewCount())
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	b := f.createBook(t)

	_, err := f.reviews.Create(context.Background(), review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 6, ReviewText: "   "})

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	assert.Contains(t, appErr.Fields, "rating")
	assert.Contains(t, appErr.Fields, "reviewText")
	f.assertRating(t, b.ID, 0, 0)
}

// TestCreate_ConcurrentSamePair 并发提交同一(图书, 用户)，只有一条成功
func TestCreate_ConcurrentSamePair(t *testing.T) {
	f := newFixture(t)
	b := f.createBook(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.reviews.Create(context.Background(), review.CreateParams{
				BookID: b.ID, UserID: f.alice, Rating: 1 + i%5, ReviewText: "race",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, review.ErrAlreadyReviewed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.store.ReviewCount())

	b2, err := f.books.GetBook(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, b2.ReviewCount)
}

// TestUniquenessGuard_StoreConstraint 跳过预检直接写入，唯一约束仍然生效
func TestUniquenessGuard_StoreConstraint(t *testing.T) {
	f := newFixture(t)
	b := f.createBook(t)
	guard := review.NewUniquenessGuard(f.store.Reviews())
	ctx := context.Background()

	require.NoError(t, guard.Insert(ctx, review.NewReview(b.ID, f.alice, 4, "first")))
	err := guard.Insert(ctx, review.NewReview(b.ID, f.alice, 5, "second"))

	assert.ErrorIs(t, err, review.ErrAlreadyReviewed)
	assert.ErrorIs(t, guard.Admit(ctx, b.ID, f.alice), review.ErrAlreadyReviewed)
	assert.NoError(t, guard.Admit(ctx, b.ID, f.carol))
}

func TestUpdateDelete_NotFoundBeforeForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reviews.Update(ctx, 999, f.carol, review.Update{Rating: intPtr(3)})
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
	assert.Equal(t, 404, apperrors.GetAppError(err).HTTPStatus())

	_, err = f.reviews.Delete(ctx, 999, f.carol)
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
}

func TestUpdateDelete_Forbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)
	created, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "mine"})
	require.NoError(t, err)

	_, err = f.reviews.Update(ctx, created.Review.ID, f.carol, review.Update{Rating: intPtr(1), ReviewText: strPtr("hijack")})
	assert.ErrorIs(t, err, ownership.ErrForbidden)

	_, err = f.reviews.Delete(ctx, created.Review.ID, f.carol)
	assert.ErrorIs(t, err, ownership.ErrForbidden)

	got, err := f.store.Reviews().FindByID(ctx, created.Review.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "mine", got.ReviewText)
	f.assertRating(t, b.ID, 4.0, 1)
}

func TestUpdate_EmptyAndInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)
	created, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "mine"})
	require.NoError(t, err)

	_, err = f.reviews.Update(ctx, created.Review.ID, f.alice, review.Update{})
	assert.ErrorIs(t, err, review.ErrNoFieldsToUpdate)

	_, err = f.reviews.Update(ctx, created.Review.ID, f.alice, review.Update{Rating: intPtr(0)})
	assert.Equal(t, apperrors.ErrCodeInvalidParams, apperrors.GetAppError(err).Code)

	got, err := f.store.Reviews().FindByID(ctx, created.Review.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
}

// TestRecomputeFailure_RollsBack 重算失败时书评变更随事务回滚
func TestRecomputeFailure_RollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)
	created, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "ok"})
	require.NoError(t, err)

	f.store.FailUpdateRating(errors.New("lost connection"))

	_, err = f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.carol, Rating: 1, ReviewText: "bad"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStoreUnavailable, apperrors.GetAppError(err).Code)
	assert.Equal(t, 500, apperrors.GetAppError(err).HTTPStatus())

	_, err = f.reviews.Update(ctx, created.Review.ID, f.alice, review.Update{Rating: intPtr(1)})
	require.Error(t, err)

	_, err = f.reviews.Delete(ctx, created.Review.ID, f.alice)
	require.Error(t, err)

	f.store.FailUpdateRating(nil)

	assert.Equal(t, 1, f.store.ReviewCount())
	got, err := f.store.Reviews().FindByID(ctx, created.Review.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	f.assertRating(t, b.ID, 4.0, 1)
}

func TestListByBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)

	_, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "first"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.carol, Rating: 2, ReviewText: "second"})
	require.NoError(t, err)

	list, err := f.reviews.ListByBook(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ReviewText)
	assert.Equal(t, "Carol", list[0].ReviewerName)

	_, err = f.reviews.ListByBook(ctx, 12345)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	mine, err := f.reviews.ListByUser(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.Title, mine[0].BookTitle)
	assert.Equal(t, b.Author, mine[0].BookAuthor)
}

// TestDeleteAndReReview 删除书评后可以重新评价
func TestDeleteAndReReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)

	created, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "v1"})
	require.NoError(t, err)
	_, err = f.reviews.Delete(ctx, created.Review.ID, f.alice)
	require.NoError(t, err)
	f.assertRating(t, b.ID, 0, 0)

	_, err = f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 3, ReviewText: "v2"})
	require.NoError(t, err)
	f.assertRating(t, b.ID, 3.0, 1)
}

// vanishingReviews 读取书评之后立即删除，模拟读取与更新之间的并发删除
type vanishingReviews struct {
	*memstore.ReviewRepository
}

func (v vanishingReviews) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	r, err := v.ReviewRepository.FindByID(ctx, id)
	if err == nil {
		_ = v.ReviewRepository.Delete(ctx, id)
	}
	return r, err
}

func TestUpdate_ConcurrentlyDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t)

	created, err := f.reviews.Create(ctx, review.CreateParams{BookID: b.ID, UserID: f.alice, Rating: 4, ReviewText: "Solid"})
	require.NoError(t, err)

	agg := rating.NewAggregator(f.store.Reviews(), f.store.Books())
	svc := review.NewService(vanishingReviews{f.store.Reviews()}, f.store.Books(), agg, f.store)

	_, err = svc.Update(ctx, created.Review.ID, f.alice, review.Update{Rating: intPtr(1)})
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
	f.assertRating(t, b.ID, 4.0, 1)
}
