package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// ContactHandler 联系表单接口
type ContactHandler struct {
	svc *service.ContactService
}

// NewContactHandler 创建 ContactHandler
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

type contactRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Company   string `json:"company"`
	JobTitle  string `json:"job_title"`
	Country   string `json:"country"`
	Message   string `json:"message" binding:"required"`
}

// Create POST /api/v1/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ip, ua := clientMeta(c)
	id, err := h.svc.Create(c.Request.Context(), &service.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Company:   req.Company,
		JobTitle:  req.JobTitle,
		Country:   req.Country,
		Message:   req.Message,
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": strconv.FormatInt(id, 10)})
}
