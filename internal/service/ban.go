package service

import (
	"context"
	"strings"

	"board_go/internal/core/logger"
	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/pkg/pool"
	"board_go/internal/repository"
)

// BanService 封禁IP服务
// 封禁检查在每个写请求路径上，结果进L1缓存
type BanService struct {
	repo repository.BanRepository
	l1   *pool.SimpleCache[string, bool]
}

// NewBanService 创建BanService实例
func NewBanService(repo repository.BanRepository) *BanService {
	return &BanService{
		repo: repo,
		l1:   pool.NewCache[string, bool](8192),
	}
}

// IsBanned 查询IP是否被封禁
// 缓存未命中时回源，查询失败按未封禁放行并记日志
func (s *BanService) IsBanned(ctx context.Context, ip string) bool {
	if ip == "" {
		return false
	}
	if banned, ok := s.l1.Get(ip); ok {
		return banned
	}
	banned, err := s.repo.IsBanned(ctx, ip)
	if err != nil {
		logger.Warn("ban check failed", logger.String("ip", ip), logger.ErrorField(err))
		return false
	}
	s.l1.Set(ip, banned)
	return banned
}

// Ban 封禁IP
func (s *BanService) Ban(ctx context.Context, ip, reason string) error {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return apperr.Validation("ip is required")
	}
	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}
	if err := s.repo.Add(ctx, ip, reasonPtr); err != nil {
		return err
	}
	s.l1.Set(ip, true)
	logger.Info("ip banned", logger.String("ip", ip))
	return nil
}

// Unban 解封IP（幂等false）
func (s *BanService) Unban(ctx context.Context, ip string) (bool, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return false, apperr.Validation("ip is required")
	}
	ok, err := s.repo.Remove(ctx, ip)
	if err != nil {
		return false, err
	}
	s.l1.Remove(ip)
	return ok, nil
}

// List 封禁列表
func (s *BanService) List(ctx context.Context) ([]*model.BannedIP, error) {
	return s.repo.List(ctx)
}
