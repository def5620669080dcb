package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"board_go/internal/model"
)

// SecurityKeyRepository 安全密钥数据访问接口
type SecurityKeyRepository interface {
	// GetActiveByHash 按指纹查找生效且未过期的密钥
	GetActiveByHash(ctx context.Context, keyHash string) (*model.SecurityKey, error)
	Create(ctx context.Context, key *model.SecurityKey) error
	List(ctx context.Context) ([]*model.SecurityKey, error)
	Deactivate(ctx context.Context, id int64) (bool, error)

	CreateRequest(ctx context.Context, req *model.SecurityKeyRequest) error
	ListRequests(ctx context.Context, status string, limit, offset int) ([]*model.SecurityKeyRequest, error)
	GetRequest(ctx context.Context, id int64) (*model.SecurityKeyRequest, error)
	ProcessRequest(ctx context.Context, id int64, status string, assignedKey *string) (bool, error)
}

type securityKeyRepository struct {
	db *sqlx.DB
}

// NewSecurityKeyRepository 创建SecurityKeyRepository实例
func NewSecurityKeyRepository(db *sqlx.DB) SecurityKeyRepository {
	return &securityKeyRepository{db: db}
}

// GetActiveByHash 指纹等值查找，仅生效未过期
func (r *securityKeyRepository) GetActiveByHash(ctx context.Context, keyHash string) (*model.SecurityKey, error) {
	var key model.SecurityKey
	err := r.db.GetContext(ctx, &key, `
		SELECT id, key_hash, key_name, is_active, expires_at, created_at
		FROM security_keys
		WHERE key_hash = ? AND is_active = 1
		  AND (expires_at IS NULL OR expires_at > NOW())`,
		keyHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}

// Create 创建密钥
func (r *securityKeyRepository) Create(ctx context.Context, key *model.SecurityKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO security_keys (id, key_hash, key_name, is_active, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())`,
		key.ID, key.KeyHash, key.KeyName, key.IsActive, key.ExpiresAt)
	return err
}

// List 全部密钥
func (r *securityKeyRepository) List(ctx context.Context) ([]*model.SecurityKey, error) {
	var keys []*model.SecurityKey
	err := r.db.SelectContext(ctx, &keys, `
		SELECT id, key_hash, key_name, is_active, expires_at, created_at
		FROM security_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Deactivate 停用密钥
func (r *securityKeyRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE security_keys SET is_active = 0 WHERE id = ? AND is_active = 1", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateRequest 创建密钥申请
func (r *securityKeyRepository) CreateRequest(ctx context.Context, req *model.SecurityKeyRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO security_key_requests (id, email, message, request_status,
			assigned_security_key, auto_generated_password, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		req.ID, req.Email, req.Message, req.RequestStatus,
		req.AssignedSecurityKey, req.AutoGeneratedPassword, req.IPAddress, req.UserAgent)
	return err
}

// ListRequests 按状态过滤申请列表，status为空取全部
func (r *securityKeyRepository) ListRequests(ctx context.Context, status string, limit, offset int) ([]*model.SecurityKeyRequest, error) {
	var reqs []*model.SecurityKeyRequest
	query := `
		SELECT id, email, message, request_status, assigned_security_key,
			auto_generated_password, ip_address, user_agent, created_at, processed_at
		FROM security_key_requests`
	args := []interface{}{}
	if status != "" {
		query += " WHERE request_status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, err
	}
	return reqs, nil
}

// GetRequest 单条申请
func (r *securityKeyRepository) GetRequest(ctx context.Context, id int64) (*model.SecurityKeyRequest, error) {
	var req model.SecurityKeyRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT id, email, message, request_status, assigned_security_key,
			auto_generated_password, ip_address, user_agent, created_at, processed_at
		FROM security_key_requests WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// ProcessRequest 处理申请（仅pending可处理）
func (r *securityKeyRepository) ProcessRequest(ctx context.Context, id int64, status string, assignedKey *string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE security_key_requests
		SET request_status = ?, assigned_security_key = ?, processed_at = NOW()
		WHERE id = ? AND request_status = ?`,
		status, assignedKey, id, model.KeyRequestPending)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
