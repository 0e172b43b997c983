// Package memstore 内存实现的实体存储，供domain/application/handler测试使用
//
// 行为与MySQL实现保持一致：
//   - (book_id, user_id)唯一，冲突返回shared.ErrDuplicateKey
//   - 事务失败时回滚全部修改
//   - 事务之间串行执行（相当于所有事务都持有同一把锁）
//   - 事务外的单条写操作视为自动提交的小事务，同样与事务串行
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
)

type txKey struct{}

// Store 内存存储
type Store struct {
	txMu sync.Mutex

	mu           sync.Mutex
	nextBookID   uint
	nextReviewID uint
	nextUserID   uint
	books        map[uint]book.Book
	reviews      map[uint]review.Review
	users        map[uint]user.User

	failListRatings  error
	failUpdateRating error
}

// New 创建空存储
func New() *Store {
	return &Store{
		books:   make(map[uint]book.Book),
		reviews: make(map[uint]review.Review),
		users:   make(map[uint]user.User),
	}
}

// Books 图书仓储
func (s *Store) Books() *BookRepository { return &BookRepository{s: s} }

// Reviews 书评仓储
func (s *Store) Reviews() *ReviewRepository { return &ReviewRepository{s: s} }

// Users 用户仓储
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// FailListRatings 之后读取评分都返回err（nil恢复正常）
func (s *Store) FailListRatings(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failListRatings = err
}

// FailUpdateRating 之后写回评分都返回err（nil恢复正常）
func (s *Store) FailUpdateRating(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdateRating = err
}

// ReviewCount 当前书评总数
func (s *Store) ReviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

// Transaction 实现shared.Transactor
// 嵌套调用直接复用外层事务
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// autocommit 事务外的写操作等待进行中的事务结束，回滚不会覆盖它们
// 用法：defer r.s.autocommit(ctx)()
func (s *Store) autocommit(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

type snapshot struct {
	nextBookID, nextReviewID, nextUserID uint
	books                                map[uint]book.Book
	reviews                              map[uint]review.Review
	users                                map[uint]user.User
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		nextBookID:   s.nextBookID,
		nextReviewID: s.nextReviewID,
		nextUserID:   s.nextUserID,
		books:        copyMap(s.books),
		reviews:      copyMap(s.reviews),
		users:        copyMap(s.users),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBookID = snap.nextBookID
	s.nextReviewID = snap.nextReviewID
	s.nextUserID = snap.nextUserID
	s.books = snap.books
	s.reviews = snap.reviews
	s.users = snap.users
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sortNewest 创建时间倒序，ID倒序兜底
func sortNewest[T any](items []T, createdAt func(T) int64, id func(T) uint) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := createdAt(items[i]), createdAt(items[j])
		if ci != cj {
			return ci > cj
		}
		return id(items[i]) > id(items[j])
	})
}
