package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

// BookRepository 实现book.Repository
type BookRepository struct {
	s *Store
}

var _ book.Repository = (*BookRepository)(nil)

func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextBookID++
	b.ID = r.s.nextBookID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
		b.UpdatedAt = b.CreatedAt
	}
	b.AverageRating = 0
	b.ReviewCount = 0
	r.s.books[b.ID] = *b
	b.AddedByName = r.s.users[b.AddedBy].Name
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return r.withOwner(b), nil
}

// LockByID 事务之间已串行，等价于FindByID
func (r *BookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *BookRepository) Update(ctx context.Context, b *book.Book) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.books[b.ID]
	if !ok {
		return book.ErrBookNotFound
	}
	stored.Title = b.Title
	stored.Author = b.Author
	stored.Description = b.Description
	stored.Genre = b.Genre
	stored.PublishedYear = b.PublishedYear
	stored.UpdatedAt = time.Now()
	r.s.books[b.ID] = stored
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.s.books, id)
	return nil
}

func (r *BookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params.Normalize()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*book.Book
	for _, b := range r.s.books {
		if params.Search != "" && !containsFold(b.Title, params.Search) && !containsFold(b.Author, params.Search) {
			continue
		}
		if params.Genre != "" && b.Genre != params.Genre {
			continue
		}
		matched = append(matched, r.withOwner(b))
	}

	switch params.Sort {
	case book.SortYear:
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].PublishedYear != matched[j].PublishedYear {
				return matched[i].PublishedYear > matched[j].PublishedYear
			}
			return matched[i].ID > matched[j].ID
		})
	case book.SortRating:
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].AverageRating != matched[j].AverageRating {
				return matched[i].AverageRating > matched[j].AverageRating
			}
			return matched[i].ID > matched[j].ID
		})
	default:
		sortNewest(matched, bookCreatedAt, bookID)
	}

	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return []*book.Book{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *BookRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	books := []*book.Book{}
	for _, b := range r.s.books {
		if b.AddedBy == ownerID {
			books = append(books, r.withOwner(b))
		}
	}
	sortNewest(books, bookCreatedAt, bookID)
	return books, nil
}

func (r *BookRepository) UpdateRating(ctx context.Context, id uint, averageRating float64, reviewCount int) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failUpdateRating != nil {
		return r.s.failUpdateRating
	}
	stored, ok := r.s.books[id]
	if !ok {
		return nil
	}
	stored.AverageRating = averageRating
	stored.ReviewCount = reviewCount
	r.s.books[id] = stored
	return nil
}

// withOwner 调用方需持有mu
func (r *BookRepository) withOwner(b book.Book) *book.Book {
	b.AddedByName = r.s.users[b.AddedBy].Name
	return &b
}

func bookCreatedAt(b *book.Book) int64 { return b.CreatedAt.UnixNano() }
func bookID(b *book.Book) uint         { return b.ID }
