package mgt

import (
	"github.com/gin-gonic/gin"

	"board_go/internal/core/logger"
	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// CacheHandler 缓存管理接口
type CacheHandler struct {
	posts *service.PostService
}

// NewCacheHandler 创建 CacheHandler
func NewCacheHandler(posts *service.PostService) *CacheHandler {
	return &CacheHandler{posts: posts}
}

// Flush POST /api/mgt/cache/flush 清空帖子缓存
func (h *CacheHandler) Flush(c *gin.Context) {
	h.posts.FlushCache(c.Request.Context())
	logger.Info("post cache flushed", logger.String("client_ip", c.ClientIP()))
	response.Success(c, nil)
}
