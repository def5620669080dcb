package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"board_go/internal/model"
)

// ProfileRepository 账号资料数据访问接口
type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByUserID(ctx context.Context, userID int64) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	UpdateLastvisit(ctx context.Context, userID int64, ts int64) error
}

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository 创建ProfileRepository实例
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `user_id, username, password_hash, display_name, email, role, status, created_at, lastvisit`

// Create 创建账号
func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, password_hash, display_name, email, role, status, created_at, lastvisit)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), ?)`,
		p.UserID, p.Username, p.PasswordHash, p.DisplayName, p.Email, p.Role, p.Status, p.Lastvisit)
	return err
}

// GetByUserID 按user_id查找（含禁用账号，状态由service判断）
func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = ?", userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetByUsername 按用户名查找
func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p,
		"SELECT "+profileColumns+" FROM profiles WHERE username = ?", username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdateLastvisit 更新最后访问时间
func (r *profileRepository) UpdateLastvisit(ctx context.Context, userID int64, ts int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET lastvisit = ? WHERE user_id = ?", ts, userID)
	return err
}
