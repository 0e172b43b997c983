package rating

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

type fakeStore struct {
	ratings  map[uint][]int
	written  map[uint]Summary
	readErr  error
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{ratings: map[uint][]int{}, written: map[uint]Summary{}}
}

func (s *fakeStore) ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return append([]int(nil), s.ratings[bookID]...), nil
}

func (s *fakeStore) UpdateRating(ctx context.Context, bookID uint, avg float64, count int) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written[bookID] = Summary{AverageRating: avg, ReviewCount: count}
	return nil
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"空集合", nil, 0},
		{"单条", []int{4}, 4.0},
		{"整除", []int{4, 5, 3}, 4.0},
		{"半数进位", []int{4, 5}, 4.5},
		{"三分之一", []int{1, 1, 2}, 1.3},
		{"三分之二", []int{1, 2, 2}, 1.7},
		{"2.25进位到2.3", []int{2, 2, 2, 3}, 2.3},
		// 1.15在float64下是1.1499999...，整数运算保证进位
		{"1.15进位到1.2", append(repeat(1, 17), 2, 2, 2), 1.2},
		{"4.45进位到4.5", append(repeat(4, 11), repeat(5, 9)...), 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Average(tt.ratings))
		})
	}
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// TestAverage_Property 任意1-5评分集合，结果是均值在一位小数上的最近值，半数远离零
func TestAverage_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ratings := rapid.SliceOfN(rapid.IntRange(1, 5), 1, 200).Draw(t, "ratings")

		sum := 0
		for _, r := range ratings {
			sum += r
		}
		n := len(ratings)
		got := Average(ratings)

		tenths := got * 10
		if math.Abs(tenths-math.Round(tenths)) > 1e-9 {
			t.Fatalf("结果不是一位小数: %v", got)
		}
		if got < 1 || got > 5 {
			t.Fatalf("结果越界: %v", got)
		}

		// |tenths*n - sum*10| ≤ n/2，且恰好半数时向上
		diff := int(math.Round(tenths))*n*2 - sum*20
		if diff < -n || diff > n {
			t.Fatalf("不是最近的一位小数: ratings=%v got=%v", ratings, got)
		}
		if diff == -n {
			t.Fatalf("半数未远离零: ratings=%v got=%v", ratings, got)
		}
	})
}

func TestAggregator_Recompute(t *testing.T) {
	store := newFakeStore()
	store.ratings[1] = []int{4, 5}
	agg := NewAggregator(store, store)

	summary, err := agg.Recompute(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, Summary{AverageRating: 4.5, ReviewCount: 2}, summary)
	assert.Equal(t, summary, store.written[1])
}

func TestAggregator_RecomputeEmpty(t *testing.T) {
	store := newFakeStore()
	agg := NewAggregator(store, store)

	summary, err := agg.Recompute(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Equal(t, Summary{}, store.written[9])
}

// TestAggregator_WritesWhatItRead 持久化结果总是读到的集合的纯函数
func TestAggregator_WritesWhatItRead(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := newFakeStore()
		ratings := rapid.SliceOf(rapid.IntRange(1, 5)).Draw(t, "ratings")
		store.ratings[3] = ratings

		summary, err := NewAggregator(store, store).Recompute(context.Background(), 3)
		if err != nil {
			t.Fatal(err)
		}
		if summary != Summarize(ratings) || store.written[3] != summary {
			t.Fatalf("写回结果不一致: %+v vs %+v", store.written[3], summary)
		}
	})
}

func TestAggregator_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("读取失败", func(t *testing.T) {
		store := newFakeStore()
		store.readErr = boom

		_, err := NewAggregator(store, store).Recompute(context.Background(), 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeStoreUnavailable, appErr.Code)
		assert.Equal(t, 500, appErr.HTTPStatus())
		assert.Empty(t, store.written)
	})

	t.Run("写回失败", func(t *testing.T) {
		store := newFakeStore()
		store.ratings[1] = []int{3}
		store.writeErr = boom

		_, err := NewAggregator(store, store).Recompute(context.Background(), 1)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, apperrors.ErrCodeStoreUnavailable, apperrors.GetAppError(err).Code)
	})
}
