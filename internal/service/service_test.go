package service

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"board_go/internal/core/config"
	"board_go/internal/core/logger"
	"board_go/internal/core/snowflake"
	"board_go/internal/model"
	"board_go/internal/repository"
)

func TestMain(m *testing.M) {
	logger.Init(&config.LoggingConfig{Level: "error", Output: "stdout"})
	snowflake.Init(&config.SnowflakeConfig{WorkerID: 1})
	os.Exit(m.Run())
}

func testCacheCfg() *config.CacheConfig {
	return &config.CacheConfig{L1CapMB: 2, L2TTL: 60}
}

func testBoardCfg() *config.BoardConfig {
	return &config.BoardConfig{MinPasswordLen: 4, MaxListLimit: 100, MaxDepth: 10}
}

// fakePostRepo 内存版PostRepository，事务语义按存储层约定模拟
type fakePostRepo struct {
	mu    sync.Mutex
	posts map[int64]*model.Post
	stats map[int64]*model.PostStats
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[int64]*model.Post),
		stats: make(map[int64]*model.PostStats),
	}
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePostRepo) GetStats(ctx context.Context, id int64) (*model.PostStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ParentID != nil {
		parent, ok := r.posts[*post.ParentID]
		if !ok {
			return repository.ErrParentNotFound
		}
		if parent.IsDeleted {
			return repository.ErrParentDeleted
		}
		post.Depth = parent.Depth + 1
	} else {
		post.Depth = 0
	}

	maxOrder := 0
	for _, p := range r.posts {
		if samePtr(p.ParentID, post.ParentID) && p.SortOrder > maxOrder {
			maxOrder = p.SortOrder
		}
	}
	post.SortOrder = maxOrder + 1
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt

	cp := *post
	r.posts[post.ID] = &cp
	r.stats[post.ID] = &model.PostStats{PostID: post.ID}

	if post.ParentID != nil {
		now := time.Now()
		s, ok := r.stats[*post.ParentID]
		if !ok {
			s = &model.PostStats{PostID: *post.ParentID}
			r.stats[*post.ParentID] = s
		}
		s.ReplyCount++
		s.LastReplyAt = &now
	}
	return nil
}

func (r *fakePostRepo) SoftDelete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.IsDeleted {
		return false, nil
	}
	p.IsDeleted = true
	return true, nil
}

func (r *fakePostRepo) ListRoots(ctx context.Context, limit, offset int) ([]*model.ThreadPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var roots []*model.Post
	for _, p := range r.posts {
		if p.ParentID == nil {
			roots = append(roots, p)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].SortOrder < roots[j].SortOrder })
	return r.page(roots, limit, offset), nil
}

func (r *fakePostRepo) ListThread(ctx context.Context, rootID int64, limit, offset int) ([]*model.ThreadPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[rootID]; !ok {
		return nil, nil
	}
	// 深度优先：回复紧随其父，先于后续兄弟
	var ordered []*model.Post
	var walk func(id int64)
	walk = func(id int64) {
		ordered = append(ordered, r.posts[id])
		var children []*model.Post
		for _, p := range r.posts {
			if p.ParentID != nil && *p.ParentID == id {
				children = append(children, p)
			}
		}
		sort.Slice(children, func(i, j int) bool { return children[i].SortOrder < children[j].SortOrder })
		for _, c := range children {
			walk(c.ID)
		}
	}
	walk(rootID)
	return r.page(ordered, limit, offset), nil
}

func (r *fakePostRepo) IncViews(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[id]
	if !ok {
		s = &model.PostStats{PostID: id}
		r.stats[id] = s
	}
	s.ViewCount++
	return nil
}

func (r *fakePostRepo) page(posts []*model.Post, limit, offset int) []*model.ThreadPost {
	if offset >= len(posts) {
		return nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	var rows []*model.ThreadPost
	for _, p := range posts[offset:end] {
		row := &model.ThreadPost{
			ID:         p.ID,
			ParentID:   p.ParentID,
			Title:      p.Title,
			Content:    p.Content,
			AuthorName: p.AuthorName,
			Depth:      p.Depth,
			SortOrder:  p.SortOrder,
			IsDeleted:  p.IsDeleted,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		}
		if s, ok := r.stats[p.ID]; ok {
			row.ReplyCount = s.ReplyCount
			row.ViewCount = s.ViewCount
			row.LikeCount = s.LikeCount
			row.LastReplyAt = s.LastReplyAt
		}
		rows = append(rows, row)
	}
	return rows
}

func samePtr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fakeProfileRepo 内存版ProfileRepository
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[int64]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[int64]*model.Profile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProfileRepo) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) UpdateLastvisit(ctx context.Context, userID int64, ts int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		p.Lastvisit = ts
	}
	return nil
}

// fakeKeyRepo 内存版SecurityKeyRepository
type fakeKeyRepo struct {
	mu       sync.Mutex
	keys     map[int64]*model.SecurityKey
	requests map[int64]*model.SecurityKeyRequest
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{
		keys:     make(map[int64]*model.SecurityKey),
		requests: make(map[int64]*model.SecurityKeyRequest),
	}
}

func (r *fakeKeyRepo) GetActiveByHash(ctx context.Context, keyHash string) (*model.SecurityKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.KeyHash != keyHash || !k.IsActive {
			continue
		}
		if k.ExpiresAt != nil && !k.ExpiresAt.After(time.Now()) {
			continue
		}
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeKeyRepo) Create(ctx context.Context, key *model.SecurityKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key.CreatedAt = time.Now()
	cp := *key
	r.keys[key.ID] = &cp
	return nil
}

func (r *fakeKeyRepo) List(ctx context.Context) ([]*model.SecurityKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.SecurityKey
	for _, k := range r.keys {
		cp := *k
		list = append(list, &cp)
	}
	return list, nil
}

func (r *fakeKeyRepo) Deactivate(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok || !k.IsActive {
		return false, nil
	}
	k.IsActive = false
	return true, nil
}

func (r *fakeKeyRepo) CreateRequest(ctx context.Context, req *model.SecurityKeyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.CreatedAt = time.Now()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeKeyRepo) ListRequests(ctx context.Context, status string, limit, offset int) ([]*model.SecurityKeyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.SecurityKeyRequest
	for _, req := range r.requests {
		if status != "" && req.RequestStatus != status {
			continue
		}
		cp := *req
		list = append(list, &cp)
	}
	return list, nil
}

func (r *fakeKeyRepo) GetRequest(ctx context.Context, id int64) (*model.SecurityKeyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeKeyRepo) ProcessRequest(ctx context.Context, id int64, status string, assignedKey *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.RequestStatus != model.KeyRequestPending {
		return false, nil
	}
	now := time.Now()
	req.RequestStatus = status
	req.AssignedSecurityKey = assignedKey
	req.ProcessedAt = &now
	return true, nil
}
