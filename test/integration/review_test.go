package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReviewRatingConsistency 4.0 → 4.5 → 3.5 → 2.0
func TestReviewRatingConsistency(t *testing.T) {
	base := BaseURL(t)
	_, owner := RegisterTestUser(t, base, "owner")
	_, alice := RegisterTestUser(t, base, "alice")
	_, bob := RegisterTestUser(t, base, "bob")
	bookID := CreateTestBook(t, base, owner, UniqueName("评分一致性"))

	create := func(token string, rating int) ReviewMutation {
		resp := Do(t, http.MethodPost, base+"/reviews", map[string]interface{}{"bookId": bookID, "rating": rating, "reviewText": "review"}, token)
		require.Equal(t, http.StatusCreated, resp.Status, resp.Message)
		return Decode[ReviewMutation](t, resp)
	}

	ra := create(alice, 4)
	assert.Equal(t, 4.0, ra.BookRating.AverageRating)

	rb := create(bob, 5)
	assert.Equal(t, 4.5, rb.BookRating.AverageRating)
	assert.Equal(t, 2, rb.BookRating.ReviewCount)

	resp := Do(t, http.MethodPut, fmt.Sprintf("%s/reviews/%d", base, ra.Review.ID), map[string]int{"rating": 2}, alice)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 3.5, Decode[ReviewMutation](t, resp).BookRating.AverageRating)

	resp = Do(t, http.MethodDelete, fmt.Sprintf("%s/reviews/%d", base, rb.Review.ID), nil, bob)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 2.0, Decode[ReviewMutation](t, resp).BookRating.AverageRating)

	t.Run("重复书评", func(t *testing.T) {
		resp := Do(t, http.MethodPost, base+"/reviews", map[string]interface{}{"bookId": bookID, "rating": 1, "reviewText": "again"}, alice)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	book := Decode[BookData](t, Do(t, http.MethodGet, fmt.Sprintf("%s/books/%d", base, bookID), nil, ""))
	assert.Equal(t, 2.0, book.AverageRating)
	assert.Equal(t, 1, book.ReviewCount)
}

// TestConcurrentReviews 并发书评之后，图书评分等于全部书评的平均值
func TestConcurrentReviews(t *testing.T) {
	base := BaseURL(t)
	_, owner := RegisterTestUser(t, base, "owner")
	bookID := CreateTestBook(t, base, owner, UniqueName("并发书评"))

	const n = 10
	tokens := make([]string, n)
	for i := range tokens {
		_, tokens[i] = RegisterTestUser(t, base, fmt.Sprintf("reader%d", i))
	}

	var wg sync.WaitGroup
	statuses := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// 评分 1..5 各两条，平均3.0
			resp := Do(t, http.MethodPost, base+"/reviews", map[string]interface{}{"bookId": bookID, "rating": i%5 + 1, "reviewText": "concurrent"}, tokens[i])
			statuses[i] = resp.Status
		}(i)
	}
	wg.Wait()

	for i, status := range statuses {
		assert.Equal(t, http.StatusCreated, status, "第%d个请求失败", i)
	}

	book := Decode[BookData](t, Do(t, http.MethodGet, fmt.Sprintf("%s/books/%d", base, bookID), nil, ""))
	assert.Equal(t, 3.0, book.AverageRating)
	assert.Equal(t, n, book.ReviewCount)

	// 删除图书时级联删除书评
	resp := Do(t, http.MethodDelete, fmt.Sprintf("%s/books/%d", base, bookID), nil, owner)
	require.Equal(t, http.StatusOK, resp.Status)
	list := Do(t, http.MethodGet, fmt.Sprintf("%s/reviews/book/%d", base, bookID), nil, "")
	assert.Equal(t, http.StatusNotFound, list.Status)
}
