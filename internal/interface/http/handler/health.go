package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookreview/pkg/response"
)

// Health 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /api/health [get]
func Health(c *gin.Context) {
	response.Message(c, "Book Review API is running")
}
