package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"board_go/internal/core/config"
	"board_go/internal/core/logger"
	"board_go/internal/core/metrics"
	"board_go/internal/core/snowflake"
	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/pkg/pool"
	"board_go/internal/repository"
)

// PostService 帖子业务服务
// 创建/删除是规格的两个授权路径：匿名(密码+安全密钥)与登录(角色)
type PostService struct {
	repo     repository.PostRepository
	profiles repository.ProfileRepository
	keys     *SecurityKeyService
	l1       *pool.SimpleCache[int64, *model.ThreadPostDTO]
	l2       *redis.Client
	sf       *singleflight.Group
	cacheCfg *config.CacheConfig
	boardCfg *config.BoardConfig
}

// NewPostService 创建PostService实例
func NewPostService(
	repo repository.PostRepository,
	profiles repository.ProfileRepository,
	keys *SecurityKeyService,
	l2 *redis.Client,
	cacheCfg *config.CacheConfig,
	boardCfg *config.BoardConfig,
) *PostService {
	return &PostService{
		repo:     repo,
		profiles: profiles,
		keys:     keys,
		l1:       pool.NewCache[int64, *model.ThreadPostDTO](4096),
		l2:       l2,
		sf:       &singleflight.Group{},
		cacheCfg: cacheCfg,
		boardCfg: boardCfg,
	}
}

// CreateInput 发帖入参
// UserID非空表示登录作者，此时忽略密码与安全密钥
type CreateInput struct {
	ParentID       *int64
	Title          string
	Content        string
	AuthorName     string
	AuthorPassword string
	SecurityKey    string
	UserID         *int64
	IPAddress      *string
	UserAgent      *string
}

// Create 创建帖子，返回新帖ID
// 校验顺序：字段 -> 匿名授权 -> 父帖存在性；插入与统计更新在仓库层单事务完成
func (s *PostService) Create(ctx context.Context, in *CreateInput) (int64, error) {
	if strings.TrimSpace(in.Content) == "" {
		return 0, apperr.Validation("content is required")
	}
	if strings.TrimSpace(in.AuthorName) == "" {
		return 0, apperr.Validation("author name is required")
	}
	isRoot := in.ParentID == nil
	if isRoot && strings.TrimSpace(in.Title) == "" {
		return 0, apperr.Validation("title is required for a new thread")
	}

	post := &model.Post{
		ID:         snowflake.Generate(),
		ParentID:   in.ParentID,
		Content:    in.Content,
		AuthorName: in.AuthorName,
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		post.Title = &title
	}

	if in.UserID != nil {
		post.UserID = in.UserID
	} else {
		// 匿名路径：密码长度 + 安全密钥
		if len(in.AuthorPassword) < s.boardCfg.MinPasswordLen {
			return 0, apperr.Validation(fmt.Sprintf("password must be at least %d characters", s.boardCfg.MinPasswordLen))
		}
		keyID, err := s.keys.Verify(ctx, in.SecurityKey)
		if err != nil {
			return 0, err
		}
		if keyID == nil {
			return 0, apperr.Authorization("invalid or expired security key")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.AuthorPassword), bcrypt.DefaultCost)
		if err != nil {
			return 0, err
		}
		hashStr := string(hash)
		post.AuthorPassHash = &hashStr
		post.SecurityKeyID = keyID
	}

	if in.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return 0, err
		}
		if parent == nil || parent.IsDeleted {
			return 0, apperr.NotFound("parent post not found")
		}
		if parent.Depth+1 > s.boardCfg.MaxDepth {
			return 0, apperr.Validation("maximum reply depth exceeded")
		}
	}

	if err := s.repo.Create(ctx, post); err != nil {
		switch {
		case errors.Is(err, repository.ErrParentNotFound), errors.Is(err, repository.ErrParentDeleted):
			return 0, apperr.NotFound("parent post not found")
		case errors.Is(err, repository.ErrTxConflict):
			return 0, apperr.Conflict("post creation conflicted, please retry")
		}
		logger.Error("create post failed", logger.ErrorField(err))
		return 0, err
	}

	metrics.PostsCreated.Inc()

	// 父帖的缓存DTO带有回复计数，作废
	if in.ParentID != nil {
		s.invalidate(*in.ParentID)
	}

	return post.ID, nil
}

// Delete 删除帖子（软删除），两个授权路径合一
// 管理员路径：adminUserID非空且其Profile角色为Admin，免密码
// 自助路径：bcrypt比对作者密码
// 密码不符/权限不足/已删除均返回false而非错误（幂等）
func (s *PostService) Delete(ctx context.Context, postID int64, authorPassword string, adminUserID *int64) (bool, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil || post.IsDeleted {
		return false, nil
	}

	if adminUserID != nil {
		profile, err := s.profiles.GetByUserID(ctx, *adminUserID)
		if err != nil {
			return false, err
		}
		if profile == nil || profile.Role != model.RoleAdmin {
			return false, nil
		}
	} else {
		if post.AuthorPassHash == nil || authorPassword == "" {
			return false, nil
		}
		if bcrypt.CompareHashAndPassword([]byte(*post.AuthorPassHash), []byte(authorPassword)) != nil {
			return false, nil
		}
	}

	ok, err := s.repo.SoftDelete(ctx, postID)
	if err != nil {
		return false, err
	}
	if ok {
		metrics.PostsDeleted.Inc()
		s.invalidate(postID)
		if adminUserID != nil {
			// 管理员删除留审计痕迹
			logger.Info("post deleted by admin",
				logger.Int64("post_id", postID),
				logger.Int64("admin_user_id", *adminUserID))
		}
	}
	return ok, nil
}

// Get 获取单帖（安全投影，L1/L2缓存 + singleflight）
func (s *PostService) Get(ctx context.Context, id int64) (*model.ThreadPostDTO, error) {
	if v, ok := s.l1.Get(id); ok {
		return v, nil
	}

	key := fmt.Sprintf("post:%d", id)
	if s.l2 != nil {
		if data, err := s.l2.Get(ctx, key).Bytes(); err == nil {
			var dto model.ThreadPostDTO
			if err := json.Unmarshal(data, &dto); err == nil {
				s.l1.Set(id, &dto)
				return &dto, nil
			}
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		post, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, nil
		}
		stats, err := s.repo.GetStats(ctx, id)
		if err != nil {
			return nil, err
		}
		dto := safeDTO(post, stats)

		if data, err := json.Marshal(dto); err == nil && s.l2 != nil {
			s.l2.Set(ctx, key, data, time.Duration(s.cacheCfg.L2TTL)*time.Second)
		}
		s.l1.Set(id, dto)
		return dto, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*model.ThreadPostDTO), nil
}

// GetSensitive 完整帖子行，含密码hash与IP/UA，仅管理接口使用
func (s *PostService) GetSensitive(ctx context.Context, id int64) (*model.SensitivePostDTO, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	return &model.SensitivePostDTO{
		ID:             post.ID,
		ParentID:       post.ParentID,
		Title:          post.Title,
		Content:        post.Content,
		AuthorName:     post.AuthorName,
		AuthorPassHash: post.AuthorPassHash,
		SecurityKeyID:  post.SecurityKeyID,
		UserID:         post.UserID,
		Depth:          post.Depth,
		SortOrder:      post.SortOrder,
		IsDeleted:      post.IsDeleted,
		IPAddress:      post.IPAddress,
		UserAgent:      post.UserAgent,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}, nil
}

// ListThread 线程列表
// parentID为空返回根帖列表；否则返回该帖及其全部后代（深度优先顺序）
// 软删帖保留占位但抹掉内容，保证已删父帖下的回复仍可渲染
func (s *PostService) ListThread(ctx context.Context, parentID *int64, limit, offset int) ([]*model.ThreadPostDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > s.boardCfg.MaxListLimit {
		limit = s.boardCfg.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var rows []*model.ThreadPost
	var err error
	if parentID == nil {
		rows, err = s.repo.ListRoots(ctx, limit, offset)
	} else {
		rows, err = s.repo.ListThread(ctx, *parentID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*model.ThreadPostDTO, 0, len(rows))
	for _, row := range rows {
		list = append(list, rowDTO(row))
	}
	return list, nil
}

// IncrementViews 浏览数+1，不去重
func (s *PostService) IncrementViews(ctx context.Context, id int64) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return apperr.NotFound("post not found")
	}
	if err := s.repo.IncViews(ctx, id); err != nil {
		return err
	}
	metrics.PostViews.Inc()
	s.invalidate(id)
	return nil
}

// FlushCache 清空帖子缓存（L1；L2按键过期）
func (s *PostService) FlushCache(ctx context.Context) {
	s.l1.Flush()
}

func (s *PostService) invalidate(id int64) {
	s.l1.Remove(id)
	if s.l2 != nil {
		s.l2.Del(context.Background(), fmt.Sprintf("post:%d", id))
	}
}

func safeDTO(post *model.Post, stats *model.PostStats) *model.ThreadPostDTO {
	dto := &model.ThreadPostDTO{
		ID:         post.ID,
		ParentID:   post.ParentID,
		Title:      post.Title,
		Content:    post.Content,
		AuthorName: post.AuthorName,
		Depth:      post.Depth,
		SortOrder:  post.SortOrder,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
		IsDeleted:  post.IsDeleted,
	}
	if stats != nil {
		dto.ReplyCount = stats.ReplyCount
		dto.ViewCount = stats.ViewCount
		dto.LikeCount = stats.LikeCount
		dto.LastReplyAt = stats.LastReplyAt
	}
	if post.IsDeleted {
		maskDeleted(dto)
	}
	return dto
}

func rowDTO(row *model.ThreadPost) *model.ThreadPostDTO {
	dto := &model.ThreadPostDTO{
		ID:          row.ID,
		ParentID:    row.ParentID,
		Title:       row.Title,
		Content:     row.Content,
		AuthorName:  row.AuthorName,
		Depth:       row.Depth,
		SortOrder:   row.SortOrder,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		ReplyCount:  row.ReplyCount,
		ViewCount:   row.ViewCount,
		LikeCount:   row.LikeCount,
		LastReplyAt: row.LastReplyAt,
		IsDeleted:   row.IsDeleted,
	}
	if row.IsDeleted {
		maskDeleted(dto)
	}
	return dto
}

func maskDeleted(dto *model.ThreadPostDTO) {
	dto.Title = nil
	dto.Content = ""
	dto.AuthorName = ""
}
