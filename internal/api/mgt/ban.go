package mgt

import (
	"github.com/gin-gonic/gin"

	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// BanHandler 封禁IP管理接口
type BanHandler struct {
	bans *service.BanService
}

// NewBanHandler 创建 BanHandler
func NewBanHandler(bans *service.BanService) *BanHandler {
	return &BanHandler{bans: bans}
}

type banRequest struct {
	IP     string `json:"ip" binding:"required"`
	Reason string `json:"reason"`
}

// List GET /api/mgt/bans
func (h *BanHandler) List(c *gin.Context) {
	list, err := h.bans.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// Ban POST /api/mgt/bans
func (h *BanHandler) Ban(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.bans.Ban(c.Request.Context(), req.IP, req.Reason); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Unban DELETE /api/mgt/ban/:ip
func (h *BanHandler) Unban(c *gin.Context) {
	ok, err := h.bans.Unban(c.Request.Context(), c.Param("ip"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"removed": ok})
}
