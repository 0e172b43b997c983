package review

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 书评领域错误定义
var (
	// ErrReviewNotFound 书评不存在
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "书评不存在")

	// ErrAlreadyReviewed 同一用户对同一本书只能发表一条书评
	ErrAlreadyReviewed = apperrors.New(apperrors.ErrCodeAlreadyReviewed, "您已经评价过这本书")

	// ErrNoFieldsToUpdate 更新请求没有任何字段
	ErrNoFieldsToUpdate = apperrors.New(apperrors.ErrCodeInvalidParams, "没有需要更新的字段")
)
