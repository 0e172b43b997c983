package mysql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/domain/book"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"MySQL 1062", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'idx_review_book_user'"}, true},
		{"包装后的1062", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), true},
		{"GORM翻译后的错误", gorm.ErrDuplicatedKey, true},
		{"其他MySQL错误", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, false},
		{"普通错误", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateError(tt.err))
		})
	}
}

func TestIsRetryableTxError(t *testing.T) {
	assert.True(t, isRetryableTxError(&mysql.MySQLError{Number: 1213}))
	assert.True(t, isRetryableTxError(&mysql.MySQLError{Number: 1205}))
	assert.True(t, isRetryableTxError(apperrors.StoreUnavailable(&mysql.MySQLError{Number: 1213}, "锁定图书失败")))
	assert.False(t, isRetryableTxError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isRetryableTxError(book.ErrBookNotFound))
	assert.False(t, isRetryableTxError(nil))
}

func TestIsForeignKeyError(t *testing.T) {
	assert.True(t, isForeignKeyError(&mysql.MySQLError{Number: 1452}))
	assert.True(t, isForeignKeyError(gorm.ErrForeignKeyViolated))
	assert.False(t, isForeignKeyError(errors.New("boom")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% pure`, escapeLike("100% pure"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "created_at DESC, id DESC", orderBy(book.SortNewest))
	assert.Equal(t, "published_year DESC, id DESC", orderBy(book.SortYear))
	assert.Equal(t, "average_rating DESC, id DESC", orderBy(book.SortRating))
	assert.Equal(t, "created_at DESC, id DESC", orderBy("unknown"))
}
