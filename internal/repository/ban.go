package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"board_go/internal/model"
)

// BanRepository 封禁IP数据访问接口
type BanRepository interface {
	IsBanned(ctx context.Context, ip string) (bool, error)
	Add(ctx context.Context, ip string, reason *string) error
	Remove(ctx context.Context, ip string) (bool, error)
	List(ctx context.Context) ([]*model.BannedIP, error)
}

type banRepository struct {
	db *sqlx.DB
}

// NewBanRepository 创建BanRepository实例
func NewBanRepository(db *sqlx.DB) BanRepository {
	return &banRepository{db: db}
}

// IsBanned 查询IP是否被封禁
func (r *banRepository) IsBanned(ctx context.Context, ip string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, "SELECT 1 FROM banned_ips WHERE ip = ?", ip)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Add 封禁IP（重复封禁覆盖原因）
func (r *banRepository) Add(ctx context.Context, ip string, reason *string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO banned_ips (ip, reason, created_at) VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE reason = VALUES(reason)`,
		ip, reason)
	return err
}

// Remove 解封IP
func (r *banRepository) Remove(ctx context.Context, ip string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM banned_ips WHERE ip = ?", ip)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List 封禁列表
func (r *banRepository) List(ctx context.Context) ([]*model.BannedIP, error) {
	var list []*model.BannedIP
	if err := r.db.SelectContext(ctx, &list,
		"SELECT ip, reason, created_at FROM banned_ips ORDER BY created_at DESC"); err != nil {
		return nil, err
	}
	return list, nil
}
