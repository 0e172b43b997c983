package memstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/shared"
)

// errForeignKey 对应MySQL的外键约束失败
var errForeignKey = errors.New("memstore: foreign key constraint fails")

// ReviewRepository 实现review.Repository
type ReviewRepository struct {
	s *Store
}

var _ review.Repository = (*ReviewRepository)(nil)

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[rv.BookID]; !ok {
		return errForeignKey
	}
	for _, existing := range r.s.reviews {
		if existing.BookID == rv.BookID && existing.UserID == rv.UserID {
			return fmt.Errorf("memstore: review(%d,%d): %w", rv.BookID, rv.UserID, shared.ErrDuplicateKey)
		}
	}

	r.s.nextReviewID++
	rv.ID = r.s.nextReviewID
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now()
		rv.UpdatedAt = rv.CreatedAt
	}
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	return r.populate(rv), nil
}

func (r *ReviewRepository) ExistsByBookAndUser(ctx context.Context, bookID, userID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rv := range r.s.reviews {
		if rv.BookID == bookID && rv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *review.Review) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.reviews[rv.ID]
	if !ok {
		return review.ErrReviewNotFound
	}
	stored.Rating = rv.Rating
	stored.ReviewText = rv.ReviewText
	stored.UpdatedAt = time.Now()
	r.s.reviews[rv.ID] = stored
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[id]; !ok {
		return review.ErrReviewNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepository) DeleteByBook(ctx context.Context, bookID uint) (int64, error) {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, rv := range r.s.reviews {
		if rv.BookID == bookID {
			delete(r.s.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r *ReviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	return r.list(func(rv review.Review) bool { return rv.BookID == bookID }), nil
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID uint) ([]*review.Review, error) {
	return r.list(func(rv review.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewRepository) ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failListRatings != nil {
		return nil, r.s.failListRatings
	}
	ratings := []int{}
	for _, rv := range r.s.reviews {
		if rv.BookID == bookID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return ratings, nil
}

func (r *ReviewRepository) list(match func(review.Review) bool) []*review.Review {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*review.Review{}
	for _, rv := range r.s.reviews {
		if match(rv) {
			out = append(out, r.populate(rv))
		}
	}
	sortNewest(out, reviewCreatedAt, reviewID)
	return out
}

// populate 调用方需持有mu
func (r *ReviewRepository) populate(rv review.Review) *review.Review {
	rv.ReviewerName = r.s.users[rv.UserID].Name
	if b, ok := r.s.books[rv.BookID]; ok {
		rv.BookTitle = b.Title
		rv.BookAuthor = b.Author
	}
	return &rv
}

func reviewCreatedAt(rv *review.Review) int64 { return rv.CreatedAt.UnixNano() }
func reviewID(rv *review.Review) uint         { return rv.ID }
