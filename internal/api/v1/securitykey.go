package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// SecurityKeyHandler 安全密钥申请接口（公开侧只有提交申请）
type SecurityKeyHandler struct {
	keys *service.SecurityKeyService
}

// NewSecurityKeyHandler 创建 SecurityKeyHandler
func NewSecurityKeyHandler(keys *service.SecurityKeyService) *SecurityKeyHandler {
	return &SecurityKeyHandler{keys: keys}
}

type keyRequestRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message"`
}

// CreateRequest POST /api/v1/key-requests
func (h *SecurityKeyHandler) CreateRequest(c *gin.Context) {
	var req keyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ip, ua := clientMeta(c)
	id, err := h.keys.CreateRequest(c.Request.Context(), req.Email, req.Message, ip, ua)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": strconv.FormatInt(id, 10)})
}
