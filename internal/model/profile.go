package model

import "time"

// Role 账号角色，封闭枚举
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Profile 账号资料模型
type Profile struct {
	UserID       int64     `db:"user_id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	Email        string    `db:"email"`
	Role         Role      `db:"role"`
	Status       int       `db:"status"` // 0: 正常, 1: 禁用
	CreatedAt    time.Time `db:"created_at"`
	Lastvisit    int64     `db:"lastvisit"`
}

// ProfileDTO 账号资料（对外）
type ProfileDTO struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32"`
	Password    string `json:"password" binding:"required,min=6,max=64"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=64"`
	Email       string `json:"email" binding:"omitempty,email"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string     `json:"token"`
	User  ProfileDTO `json:"user"`
}
