package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"board_go/internal/middleware"
	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// BoardHandler 帖子公开接口
type BoardHandler struct {
	posts   *service.PostService
	reports *service.ReportService
}

// NewBoardHandler 创建 BoardHandler
func NewBoardHandler(posts *service.PostService, reports *service.ReportService) *BoardHandler {
	return &BoardHandler{posts: posts, reports: reports}
}

// createPostRequest 发帖请求
type createPostRequest struct {
	ParentID       *int64 `json:"parent_id"`
	Title          string `json:"title"`
	Content        string `json:"content" binding:"required"`
	AuthorName     string `json:"author_name" binding:"required"`
	AuthorPassword string `json:"author_password"`
	SecurityKey    string `json:"security_key"`
}

// deletePostRequest 自助删帖请求
type deletePostRequest struct {
	AuthorPassword string `json:"author_password" binding:"required"`
}

// reportRequest 举报请求
type reportRequest struct {
	Reason string `json:"reason" binding:"required"`
	Detail string `json:"detail"`
}

// List GET /api/v1/posts 根帖列表
func (h *BoardHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.posts.ListThread(c.Request.Context(), nil, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// Thread GET /api/v1/post/:id/thread 帖子及其全部后代
func (h *BoardHandler) Thread(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)
	list, err := h.posts.ListThread(c.Request.Context(), &id, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if len(list) == 0 {
		response.NotFound(c, "post not found")
		return
	}
	response.Success(c, list)
}

// Get GET /api/v1/post/:id 单帖
func (h *BoardHandler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	dto, err := h.posts.Get(c.Request.Context(), id)
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

// Create POST /api/v1/posts 发帖（匿名或登录）
func (h *BoardHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ip, ua := clientMeta(c)
	id, err := h.posts.Create(c.Request.Context(), &service.CreateInput{
		ParentID:       req.ParentID,
		Title:          req.Title,
		Content:        req.Content,
		AuthorName:     req.AuthorName,
		AuthorPassword: req.AuthorPassword,
		SecurityKey:    req.SecurityKey,
		UserID:         middleware.GetUID(c),
		IPAddress:      ip,
		UserAgent:      ua,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": strconv.FormatInt(id, 10)})
}

// Delete DELETE /api/v1/post/:id 自助删帖（作者密码）
func (h *BoardHandler) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var req deletePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deleted, err := h.posts.Delete(c.Request.Context(), id, req.AuthorPassword, nil)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// View POST /api/v1/post/:id/view 浏览数+1
func (h *BoardHandler) View(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	if err := h.posts.IncrementViews(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Report POST /api/v1/post/:id/report 举报
func (h *BoardHandler) Report(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ip, ua := clientMeta(c)
	reportID, err := h.reports.Create(c.Request.Context(), id, req.Reason, req.Detail, ip, ua)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": strconv.FormatInt(reportID, 10)})
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

func clientMeta(c *gin.Context) (ip, ua *string) {
	if v := c.ClientIP(); v != "" {
		ip = &v
	}
	if v := c.Request.UserAgent(); v != "" {
		ua = &v
	}
	return ip, ua
}
