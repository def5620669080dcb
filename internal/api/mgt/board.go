package mgt

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"board_go/internal/middleware"
	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// BoardHandler 帖子管理接口
type BoardHandler struct {
	posts *service.PostService
}

// NewBoardHandler 创建 BoardHandler
func NewBoardHandler(posts *service.PostService) *BoardHandler {
	return &BoardHandler{posts: posts}
}

// Delete DELETE /api/mgt/post/:id 管理员删帖（免作者密码）
func (h *BoardHandler) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	uid := middleware.GetUID(c)
	if uid == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}

	deleted, err := h.posts.Delete(c.Request.Context(), id, "", uid)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// GetSensitive GET /api/mgt/post/:id 完整帖子行（含密码hash与IP/UA）
func (h *BoardHandler) GetSensitive(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	dto, err := h.posts.GetSensitive(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if dto == nil {
		response.NotFound(c, "post not found")
		return
	}
	response.Success(c, dto)
}

func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit = 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
