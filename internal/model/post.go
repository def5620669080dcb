package model

import "time"

// Post 帖子主表模型（线程根帖与回复同表，parent_id自引用）
type Post struct {
	ID             int64     `db:"id"`
	ParentID       *int64    `db:"parent_id"` // null = 根帖
	Title          *string   `db:"title"`     // 根帖必填
	Content        string    `db:"content"`
	AuthorName     string    `db:"author_name"`
	AuthorPassHash *string   `db:"author_password_hash"` // 仅匿名作者
	SecurityKeyID  *int64    `db:"security_key_id"`      // 仅匿名作者
	UserID         *int64    `db:"user_id"`              // 仅登录作者
	Depth          int       `db:"depth"`
	SortOrder      int       `db:"sort_order"`
	IsDeleted      bool      `db:"is_deleted"`
	IPAddress      *string   `db:"ip_address"`
	UserAgent      *string   `db:"user_agent"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// PostStats 帖子统计表模型（仅由创建/浏览过程写入）
type PostStats struct {
	PostID      int64      `db:"post_id"`
	ReplyCount  int        `db:"reply_count"`
	ViewCount   int        `db:"view_count"`
	LikeCount   int        `db:"like_count"`
	LastReplyAt *time.Time `db:"last_reply_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// ThreadPost 线程列表行（posts JOIN post_stats，安全投影）
type ThreadPost struct {
	ID          int64      `db:"id"`
	ParentID    *int64     `db:"parent_id"`
	Title       *string    `db:"title"`
	Content     string     `db:"content"`
	AuthorName  string     `db:"author_name"`
	Depth       int        `db:"depth"`
	SortOrder   int        `db:"sort_order"`
	IsDeleted   bool       `db:"is_deleted"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	ReplyCount  int        `db:"reply_count"`
	ViewCount   int        `db:"view_count"`
	LikeCount   int        `db:"like_count"`
	LastReplyAt *time.Time `db:"last_reply_at"`
}

// ThreadPostDTO 线程列表项（对外，绝不包含密码hash和IP）
type ThreadPostDTO struct {
	ID          int64      `json:"id"`
	ParentID    *int64     `json:"parent_id"`
	Title       *string    `json:"title,omitempty"`
	Content     string     `json:"content"`
	AuthorName  string     `json:"author_name"`
	Depth       int        `json:"depth"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ReplyCount  int        `json:"reply_count"`
	ViewCount   int        `json:"view_count"`
	LikeCount   int        `json:"like_count"`
	LastReplyAt *time.Time `json:"last_reply_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
}

// SensitivePostDTO 完整帖子行（仅管理接口）
type SensitivePostDTO struct {
	ID             int64     `json:"id"`
	ParentID       *int64    `json:"parent_id"`
	Title          *string   `json:"title,omitempty"`
	Content        string    `json:"content"`
	AuthorName     string    `json:"author_name"`
	AuthorPassHash *string   `json:"author_password_hash,omitempty"`
	SecurityKeyID  *int64    `json:"security_key_id,omitempty"`
	UserID         *int64    `json:"user_id,omitempty"`
	Depth          int       `json:"depth"`
	SortOrder      int       `json:"sort_order"`
	IsDeleted      bool      `json:"is_deleted"`
	IPAddress      *string   `json:"ip_address,omitempty"`
	UserAgent      *string   `json:"user_agent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
