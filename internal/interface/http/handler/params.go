package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// pathID 解析路径中的数字ID
// 非数字或0的ID不可能对应任何资源，按不存在处理
func pathID(c *gin.Context, name string, notFound *apperrors.AppError) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return uint(id), nil
}
