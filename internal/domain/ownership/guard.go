// Package ownership 资源归属校验
//
// 校验分两个阶段：
//  1. Resolve：加载资源，资源不存在时直接返回NotFound
//  2. Authorize：比较操作者与资源所有者
//
// 先存在性后权限，调用方对不存在的资源总是得到404，而不是403。
package ownership

import (
	"context"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// ErrForbidden 非资源所有者
var ErrForbidden = apperrors.ErrForbidden

// Owned 有所有者的资源（Book的AddedBy、Review的UserID）
type Owned interface {
	OwnerID() uint
}

// Authorize 纯比较，不访问存储
func Authorize(actingUserID, ownerID uint) error {
	if actingUserID == 0 || actingUserID != ownerID {
		return ErrForbidden
	}
	return nil
}

// Resolve 加载资源并校验归属
// load返回的错误原样透传（通常是NotFound或StoreUnavailable）
func Resolve[T Owned](ctx context.Context, actingUserID uint, load func(ctx context.Context) (T, error)) (T, error) {
	resource, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := Authorize(actingUserID, resource.OwnerID()); err != nil {
		var zero T
		return zero, err
	}
	return resource, nil
}
