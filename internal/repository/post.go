package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"board_go/internal/model"
)

// 存储层哨兵错误，service负责映射到业务错误
var (
	ErrParentNotFound = errors.New("parent post not found")
	ErrParentDeleted  = errors.New("parent post deleted")
	ErrTxConflict     = errors.New("transaction conflict")
)

// PostRepository 帖子数据访问接口
type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	GetStats(ctx context.Context, id int64) (*model.PostStats, error)
	// Create 单事务完成：锁父行、计算depth/sort_order、插入帖子与统计行、父统计自增
	Create(ctx context.Context, post *model.Post) error
	SoftDelete(ctx context.Context, id int64) (bool, error)
	ListRoots(ctx context.Context, limit, offset int) ([]*model.ThreadPost, error)
	ListThread(ctx context.Context, rootID int64, limit, offset int) ([]*model.ThreadPost, error)
	IncViews(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sqlx.DB
}

// NewPostRepository 创建PostRepository实例
func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, parent_id, title, content, author_name, author_password_hash,
	security_key_id, user_id, depth, sort_order, is_deleted, ip_address, user_agent,
	created_at, updated_at`

// GetByID 根据ID获取帖子（含已软删）
func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post,
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetStats 获取帖子统计
func (r *postRepository) GetStats(ctx context.Context, id int64) (*model.PostStats, error) {
	var stats model.PostStats
	err := r.db.GetContext(ctx, &stats,
		"SELECT post_id, reply_count, view_count, like_count, last_reply_at, updated_at FROM post_stats WHERE post_id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Create 创建帖子
// 死锁(1213)重试一次，仍失败返回ErrTxConflict
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	err := r.createTx(ctx, post)
	if isDeadlock(err) {
		err = r.createTx(ctx, post)
		if isDeadlock(err) {
			return ErrTxConflict
		}
	}
	return err
}

func (r *postRepository) createTx(ctx context.Context, post *model.Post) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if post.ParentID != nil {
		// 锁父行：保证父帖存在、未删除，且同级sort_order单调
		var parent struct {
			Depth     int  `db:"depth"`
			IsDeleted bool `db:"is_deleted"`
		}
		err = tx.GetContext(ctx, &parent,
			"SELECT depth, is_deleted FROM posts WHERE id = ? FOR UPDATE", *post.ParentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrParentNotFound
			}
			return err
		}
		if parent.IsDeleted {
			return ErrParentDeleted
		}
		post.Depth = parent.Depth + 1

		if err = tx.GetContext(ctx, &post.SortOrder,
			"SELECT COALESCE(MAX(sort_order), 0) + 1 FROM posts WHERE parent_id = ?", *post.ParentID); err != nil {
			return err
		}
	} else {
		post.Depth = 0
		if err = tx.GetContext(ctx, &post.SortOrder,
			"SELECT COALESCE(MAX(sort_order), 0) + 1 FROM posts WHERE parent_id IS NULL FOR UPDATE"); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (id, parent_id, title, content, author_name, author_password_hash,
			security_key_id, user_id, depth, sort_order, is_deleted, ip_address, user_agent,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, NOW(), NOW())`,
		post.ID, post.ParentID, post.Title, post.Content, post.AuthorName, post.AuthorPassHash,
		post.SecurityKeyID, post.UserID, post.Depth, post.SortOrder, post.IPAddress, post.UserAgent)
	if err != nil {
		return err
	}

	// 自身统计行（零值）
	_, err = tx.ExecContext(ctx,
		"INSERT INTO post_stats (post_id, reply_count, view_count, like_count, updated_at) VALUES (?, 0, 0, 0, NOW())",
		post.ID)
	if err != nil {
		return err
	}

	// 父统计：原子自增，不做读-改-写
	if post.ParentID != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO post_stats (post_id, reply_count, view_count, like_count, last_reply_at, updated_at)
			VALUES (?, 1, 0, 0, NOW(), NOW())
			ON DUPLICATE KEY UPDATE reply_count = reply_count + 1, last_reply_at = NOW(), updated_at = NOW()`,
			*post.ParentID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SoftDelete 软删除，已删除时返回false（幂等）
func (r *postRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE posts SET is_deleted = 1, updated_at = NOW() WHERE id = ? AND is_deleted = 0", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const threadColumns = `t.id, t.parent_id, t.title, t.content, t.author_name, t.depth, t.sort_order,
	t.is_deleted, t.created_at, t.updated_at,
	COALESCE(s.reply_count, 0) AS reply_count,
	COALESCE(s.view_count, 0) AS view_count,
	COALESCE(s.like_count, 0) AS like_count,
	s.last_reply_at`

// ListRoots 根帖列表，sort_order升序
// 安全投影：不取password hash与ip/ua
func (r *postRepository) ListRoots(ctx context.Context, limit, offset int) ([]*model.ThreadPost, error) {
	var rows []*model.ThreadPost
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+threadColumns+`
		FROM posts t
		LEFT JOIN post_stats s ON s.post_id = t.id
		WHERE t.parent_id IS NULL
		ORDER BY t.sort_order ASC
		LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListThread 根帖及其全部后代，按sort_order路径深度优先排序
// （回复紧随其父，先于后续兄弟）
func (r *postRepository) ListThread(ctx context.Context, rootID int64, limit, offset int) ([]*model.ThreadPost, error) {
	var rows []*model.ThreadPost
	err := r.db.SelectContext(ctx, &rows, `
		WITH RECURSIVE thread AS (
			SELECT id, parent_id, title, content, author_name, depth, sort_order, is_deleted,
				created_at, updated_at,
				CAST(LPAD(sort_order, 10, '0') AS CHAR(255)) AS path
			FROM posts WHERE id = ?
			UNION ALL
			SELECT p.id, p.parent_id, p.title, p.content, p.author_name, p.depth, p.sort_order, p.is_deleted,
				p.created_at, p.updated_at,
				CONCAT(t.path, '.', LPAD(p.sort_order, 10, '0'))
			FROM posts p JOIN thread t ON p.parent_id = t.id
		)
		SELECT `+threadColumns+`
		FROM thread t
		LEFT JOIN post_stats s ON s.post_id = t.id
		ORDER BY t.path ASC
		LIMIT ? OFFSET ?`,
		rootID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IncViews 浏览数+1（每次调用都计数，不去重）
func (r *postRepository) IncViews(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO post_stats (post_id, reply_count, view_count, like_count, updated_at)
		VALUES (?, 0, 1, 0, NOW())
		ON DUPLICATE KEY UPDATE view_count = view_count + 1, updated_at = NOW()`,
		id)
	return err
}

// isDeadlock MySQL 1213 (deadlock) / 1205 (lock wait timeout)
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
