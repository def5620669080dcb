package mgt

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"board_go/internal/middleware"
	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// ReportHandler 举报管理接口
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type processReportRequest struct {
	Note string `json:"note"`
}

// List GET /api/mgt/reports?unprocessed=1
func (h *ReportHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	onlyUnprocessed := c.Query("unprocessed") == "1"

	list, err := h.reports.List(c.Request.Context(), onlyUnprocessed, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// Process POST /api/mgt/report/:id/process
func (h *ReportHandler) Process(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid report id")
		return
	}
	uid := middleware.GetUID(c)
	if uid == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req processReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var note *string
	if n := strings.TrimSpace(req.Note); n != "" {
		note = &n
	}

	ok, err := h.reports.Process(c.Request.Context(), id, *uid, note)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"processed": ok})
}
