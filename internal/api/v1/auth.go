package v1

import (
	"github.com/gin-gonic/gin"

	"board_go/internal/middleware"
	"board_go/internal/model"
	"board_go/internal/pkg/response"
	"board_go/internal/service"
)

// AuthHandler 账号接口
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := middleware.GetUID(c)
	if uid == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	h.users.Logout(c.Request.Context(), *uid)
	response.Success(c, nil)
}

// Me GET /api/v1/auth/me 当前登录账号资料
func (h *AuthHandler) Me(c *gin.Context) {
	uid := middleware.GetUID(c)
	if uid == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}

	dto, err := h.users.GetProfile(c.Request.Context(), *uid)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if dto == nil {
		response.NotFound(c, "profile not found")
		return
	}
	response.Success(c, dto)
}
