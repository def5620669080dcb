package model

import "time"

// SecurityKey 匿名发帖共享密钥（按sha256指纹查找，明文不落库）
type SecurityKey struct {
	ID        int64      `db:"id"`
	KeyHash   string     `db:"key_hash"`
	KeyName   string     `db:"key_name"`
	IsActive  bool       `db:"is_active"`
	ExpiresAt *time.Time `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// SecurityKeyDTO 密钥列表项（管理接口，不含hash）
type SecurityKeyDTO struct {
	ID        int64      `json:"id"`
	KeyName   string     `json:"key_name"`
	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SecurityKeyRequest 密钥申请记录
type SecurityKeyRequest struct {
	ID                    int64      `db:"id"`
	Email                 string     `db:"email"`
	Message               *string    `db:"message"`
	RequestStatus         string     `db:"request_status"` // pending / approved / rejected
	AssignedSecurityKey   *string    `db:"assigned_security_key"`
	AutoGeneratedPassword *string    `db:"auto_generated_password"`
	IPAddress             *string    `db:"ip_address"`
	UserAgent             *string    `db:"user_agent"`
	CreatedAt             time.Time  `db:"created_at"`
	ProcessedAt           *time.Time `db:"processed_at"`
}

// 申请状态
const (
	KeyRequestPending  = "pending"
	KeyRequestApproved = "approved"
	KeyRequestRejected = "rejected"
)
