package book

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrNoFieldsToUpdate 更新请求没有任何字段
	ErrNoFieldsToUpdate = apperrors.New(apperrors.ErrCodeInvalidParams, "没有需要更新的字段")
)
