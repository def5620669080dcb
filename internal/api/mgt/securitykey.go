package mgt

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// SecurityKeyHandler 安全密钥管理接口
type SecurityKeyHandler struct {
	keys *service.SecurityKeyService
}

// NewSecurityKeyHandler 创建 SecurityKeyHandler
func NewSecurityKeyHandler(keys *service.SecurityKeyService) *SecurityKeyHandler {
	return &SecurityKeyHandler{keys: keys}
}

type createKeyRequest struct {
	Name      string `json:"name" binding:"required"`
	ExpiresAt *int64 `json:"expires_at"` // Unix秒，空则永不过期
}

type processRequestRequest struct {
	Approve bool `json:"approve"`
}

// Create POST /api/mgt/keys 生成新密钥
// 明文只出现在本次响应中
func (h *SecurityKeyHandler) Create(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := time.Unix(*req.ExpiresAt, 0)
		expiresAt = &t
	}

	plaintext, dto, err := h.keys.CreateKey(c.Request.Context(), req.Name, expiresAt)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"key": plaintext, "meta": dto})
}

// List GET /api/mgt/keys
func (h *SecurityKeyHandler) List(c *gin.Context) {
	list, err := h.keys.ListKeys(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// Deactivate POST /api/mgt/key/:id/deactivate
func (h *SecurityKeyHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid key id")
		return
	}

	ok, err := h.keys.Deactivate(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"deactivated": ok})
}

// ListRequests GET /api/mgt/key-requests?status=pending
func (h *SecurityKeyHandler) ListRequests(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.keys.ListRequests(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// ProcessRequest POST /api/mgt/key-request/:id/process
func (h *SecurityKeyHandler) ProcessRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	var req processRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ok, err := h.keys.ProcessRequest(c.Request.Context(), id, req.Approve)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"processed": ok})
}
