package service

import (
	"context"
	"strings"
	"time"

	"board_go/internal/core/logger"
	"board_go/internal/core/snowflake"
	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/pkg/util"
	"board_go/internal/repository"
)

// SecurityKeyService 安全密钥服务
// 密钥明文不落库，只存sha256指纹，按指纹等值查找
type SecurityKeyService struct {
	repo repository.SecurityKeyRepository
}

// NewSecurityKeyService 创建SecurityKeyService实例
func NewSecurityKeyService(repo repository.SecurityKeyRepository) *SecurityKeyService {
	return &SecurityKeyService{repo: repo}
}

// Verify 校验安全密钥
// 命中生效且未过期的密钥返回其ID，否则返回nil（不是错误）
func (s *SecurityKeyService) Verify(ctx context.Context, key string) (*int64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	record, err := s.repo.GetActiveByHash(ctx, util.Fingerprint(key))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return &record.ID, nil
}

// CreateKey 生成新密钥，明文只在本次返回
func (s *SecurityKeyService) CreateKey(ctx context.Context, name string, expiresAt *time.Time) (string, *model.SecurityKeyDTO, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil, apperr.Validation("key name is required")
	}

	plaintext, err := util.GenerateRandomString(16)
	if err != nil {
		return "", nil, err
	}

	key := &model.SecurityKey{
		ID:        snowflake.Generate(),
		KeyHash:   util.Fingerprint(plaintext),
		KeyName:   name,
		IsActive:  true,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return "", nil, err
	}

	logger.Info("security key created",
		logger.Int64("key_id", key.ID),
		logger.String("key_name", name))

	return plaintext, keyDTO(key), nil
}

// ListKeys 密钥列表（不含指纹）
func (s *SecurityKeyService) ListKeys(ctx context.Context) ([]*model.SecurityKeyDTO, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*model.SecurityKeyDTO, 0, len(keys))
	for _, k := range keys {
		list = append(list, keyDTO(k))
	}
	return list, nil
}

// Deactivate 停用密钥（幂等false）
func (s *SecurityKeyService) Deactivate(ctx context.Context, id int64) (bool, error) {
	return s.repo.Deactivate(ctx, id)
}

// CreateRequest 提交密钥申请，预生成随机密码供管理员派发
func (s *SecurityKeyService) CreateRequest(ctx context.Context, email, message string, ip, ua *string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, apperr.Validation("email is required")
	}

	password, err := util.GenerateRandomPassword(12)
	if err != nil {
		return 0, err
	}

	req := &model.SecurityKeyRequest{
		ID:                    snowflake.Generate(),
		Email:                 email,
		RequestStatus:         model.KeyRequestPending,
		AutoGeneratedPassword: &password,
		IPAddress:             ip,
		UserAgent:             ua,
	}
	if msg := strings.TrimSpace(message); msg != "" {
		req.Message = &msg
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return 0, err
	}
	return req.ID, nil
}

// ListRequests 申请列表
func (s *SecurityKeyService) ListRequests(ctx context.Context, status string, limit, offset int) ([]*model.SecurityKeyRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListRequests(ctx, status, limit, offset)
}

// ProcessRequest 处理申请
// 批准时生成并派发一把新密钥，明文写入申请记录供通知使用；仅pending可处理
func (s *SecurityKeyService) ProcessRequest(ctx context.Context, id int64, approve bool) (bool, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return false, err
	}
	if req == nil || req.RequestStatus != model.KeyRequestPending {
		return false, nil
	}

	if !approve {
		return s.repo.ProcessRequest(ctx, id, model.KeyRequestRejected, nil)
	}

	plaintext, _, err := s.CreateKey(ctx, "request:"+req.Email, nil)
	if err != nil {
		return false, err
	}
	return s.repo.ProcessRequest(ctx, id, model.KeyRequestApproved, &plaintext)
}

func keyDTO(k *model.SecurityKey) *model.SecurityKeyDTO {
	return &model.SecurityKeyDTO{
		ID:        k.ID,
		KeyName:   k.KeyName,
		IsActive:  k.IsActive,
		ExpiresAt: k.ExpiresAt,
		CreatedAt: k.CreatedAt,
	}
}
