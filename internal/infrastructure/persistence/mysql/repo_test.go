package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// newMockDB GORM + sqlmock，断言仓储生成的SQL
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestReviewRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("更新成功", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE `reviews` SET .+ WHERE .*`id` = \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rv := &review.Review{ID: 42, Rating: 3, ReviewText: "updated"}
		require.NoError(t, NewReviewRepository(db).Update(ctx, rv))
		assert.False(t, rv.UpdatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("读取后被并发删除", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE `reviews` SET .+ WHERE .*`id` = \\?").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewReviewRepository(db).Update(ctx, &review.Review{ID: 42, Rating: 3, ReviewText: "updated"})
		assert.ErrorIs(t, err, review.ErrReviewNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("数据库错误", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE `reviews` SET").WillReturnError(errors.New("connection refused"))

		err := NewReviewRepository(db).Update(ctx, &review.Review{ID: 42, Rating: 3, ReviewText: "updated"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStoreUnavailable, apperrors.GetAppError(err).Code)
	})
}

func TestBookRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("更新成功", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE `books` SET .+ WHERE .*`id` = \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))

		b := &book.Book{ID: 7, Title: "Go", Author: "Rob", Description: "desc", Genre: book.GenreFiction, PublishedYear: 2020}
		require.NoError(t, NewBookRepository(db).Update(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("读取后被并发删除", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE `books` SET .+ WHERE .*`id` = \\?").
			WillReturnResult(sqlmock.NewResult(0, 0))

		b := &book.Book{ID: 7, Title: "Go", Author: "Rob", Description: "desc", Genre: book.GenreFiction, PublishedYear: 2020}
		assert.ErrorIs(t, NewBookRepository(db).Update(ctx, b), book.ErrBookNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_DeleteRowsAffected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		rows    int64
		del     func(db *gorm.DB) error
		wantErr error
	}{
		{"删除书评", "reviews", 1, func(db *gorm.DB) error { return NewReviewRepository(db).Delete(ctx, 42) }, nil},
		{"书评不存在", "reviews", 0, func(db *gorm.DB) error { return NewReviewRepository(db).Delete(ctx, 42) }, review.ErrReviewNotFound},
		{"删除图书", "books", 1, func(db *gorm.DB) error { return NewBookRepository(db).Delete(ctx, 7) }, nil},
		{"图书不存在", "books", 0, func(db *gorm.DB) error { return NewBookRepository(db).Delete(ctx, 7) }, book.ErrBookNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec("DELETE FROM `" + tt.table + "` WHERE .*`id` = \\?").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := tt.del(db)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReviewRepository_DeleteByBook(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM `reviews` WHERE book_id = \\?").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewReviewRepository(db).DeleteByBook(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_LockByID(t *testing.T) {
	ctx := context.Background()

	t.Run("SELECT ... FOR UPDATE", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `books` WHERE .+ FOR UPDATE$").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "added_by", "average_rating", "review_count"}).
				AddRow(7, "Go", 1, 4.5, 2))

		b, err := NewBookRepository(db).LockByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, uint(7), b.ID)
		assert.Equal(t, 4.5, b.AverageRating)
		assert.Equal(t, 2, b.ReviewCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("图书不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FOR UPDATE$").WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewBookRepository(db).LockByID(ctx, 7)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestReviewRepository_ListRatingsByBook(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT `rating` FROM `reviews` WHERE book_id = \\? FOR SHARE$").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(4).AddRow(5))

	ratings, err := NewReviewRepository(db).ListRatingsByBook(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, ratings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_UpdateRatingVanishedBook(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE `books` SET .+ WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewBookRepository(db).UpdateRating(context.Background(), 7, 4.5, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RetriesDeadlock(t *testing.T) {
	db, mock := newMockDB(t)
	cfg := &config.Config{Database: config.DatabaseConfig{TxMaxAttempts: 3}}
	tm := NewTxManager(db, cfg)
	reviews := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `reviews`").WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `reviews`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	attempts := 0
	err := tm.Transaction(context.Background(), func(ctx context.Context) error {
		attempts++
		return reviews.Delete(ctx, 42)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_NotFoundIsNotRetried(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTxManager(db, &config.Config{Database: config.DatabaseConfig{TxMaxAttempts: 3}})
	reviews := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `reviews`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := tm.Transaction(context.Background(), func(ctx context.Context) error {
		return reviews.Delete(ctx, 42)
	})

	assert.ErrorIs(t, err, review.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
