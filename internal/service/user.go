package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"board_go/internal/core/config"
	"board_go/internal/core/logger"
	"board_go/internal/core/snowflake"
	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/pkg/pool"
	"board_go/internal/repository"
)

// SessionEventType 会话事件类型
type SessionEventType string

const (
	SessionLogin  SessionEventType = "login"
	SessionLogout SessionEventType = "logout"
)

// SessionEvent 会话变更事件
type SessionEvent struct {
	Type   SessionEventType
	UserID int64
	At     time.Time
}

// SessionSubscription 会话事件订阅
// Unsubscribe后通道关闭，可重复调用
type SessionSubscription struct {
	C    <-chan SessionEvent
	once sync.Once
	stop func()
}

// Unsubscribe 取消订阅
func (s *SessionSubscription) Unsubscribe() {
	s.once.Do(s.stop)
}

// UserService 账号服务
// 会话变更通过显式订阅通道下发，不依赖全局状态
type UserService struct {
	repo     repository.ProfileRepository
	l1       *pool.BigCache
	l2       *redis.Client
	sf       *singleflight.Group
	cacheCfg *config.CacheConfig
	jwtCfg   *config.JWTConfig

	subMu  sync.Mutex
	subSeq int64
	subs   map[int64]chan SessionEvent
}

// NewUserService 创建UserService实例
func NewUserService(repo repository.ProfileRepository, l2 *redis.Client, cacheCfg *config.CacheConfig, jwtCfg *config.JWTConfig) *UserService {
	l1, err := pool.NewBigCache(cacheCfg.L1CapMB, time.Duration(cacheCfg.L2TTL)*time.Second)
	if err != nil {
		logger.Warn("profile L1 cache disabled", logger.ErrorField(err))
	}
	return &UserService{
		repo:     repo,
		l1:       l1,
		l2:       l2,
		sf:       &singleflight.Group{},
		cacheCfg: cacheCfg,
		jwtCfg:   jwtCfg,
		subs:     make(map[int64]chan SessionEvent),
	}
}

// Register 注册账号，角色固定为User
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.ProfileDTO, error) {
	exist, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, apperr.Validation("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		UserID:       snowflake.Generate(),
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Role:         model.RoleUser,
		Status:       0,
		Lastvisit:    time.Now().Unix(),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		logger.Error("register: create profile failed", logger.ErrorField(err))
		return nil, err
	}

	return profileDTO(profile), nil
}

// Login 登录，签发JWT并广播会话事件
func (s *UserService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	profile, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		logger.Error("login: get profile failed", logger.ErrorField(err))
		return nil, err
	}
	if profile == nil {
		return nil, apperr.Authorization("invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Authorization("invalid username or password")
	}
	if profile.Status != 0 {
		return nil, apperr.Authorization("account disabled")
	}

	go s.repo.UpdateLastvisit(context.Background(), profile.UserID, time.Now().Unix())

	token, err := s.generateJWT(profile)
	if err != nil {
		logger.Error("login: sign token failed", logger.ErrorField(err))
		return nil, err
	}

	s.publish(SessionEvent{Type: SessionLogin, UserID: profile.UserID, At: time.Now()})

	return &model.LoginResponse{
		Token: token,
		User:  *profileDTO(profile),
	}, nil
}

// Logout JWT本身无状态，登出只负责广播会话事件
func (s *UserService) Logout(ctx context.Context, userID int64) {
	s.publish(SessionEvent{Type: SessionLogout, UserID: userID, At: time.Now()})
}

// GetProfile 按user_id获取资料（L1/L2缓存）
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.ProfileDTO, error) {
	key := fmt.Sprintf("profile:%d", userID)

	if s.l1 != nil {
		if data, ok := s.l1.Get(key); ok {
			var dto model.ProfileDTO
			if err := json.Unmarshal(data, &dto); err == nil {
				return &dto, nil
			}
		}
	}
	if s.l2 != nil {
		if data, err := s.l2.Get(ctx, key).Bytes(); err == nil {
			var dto model.ProfileDTO
			if err := json.Unmarshal(data, &dto); err == nil {
				if s.l1 != nil {
					s.l1.Set(key, data)
				}
				return &dto, nil
			}
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		profile, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, nil
		}
		dto := profileDTO(profile)
		if data, err := json.Marshal(dto); err == nil {
			if s.l1 != nil {
				s.l1.Set(key, data)
			}
			if s.l2 != nil {
				s.l2.Set(ctx, key, data, time.Duration(s.cacheCfg.L2TTL)*time.Second)
			}
		}
		return dto, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*model.ProfileDTO), nil
}

// HasRole 角色检查
func (s *UserService) HasRole(ctx context.Context, userID int64, role model.Role) (bool, error) {
	dto, err := s.GetProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return dto != nil && dto.Role == role, nil
}

// SubscribeSessions 订阅会话变更
// 通道带缓冲，消费不及时的事件直接丢弃而不是阻塞登录
func (s *UserService) SubscribeSessions(buffer int) *SessionSubscription {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan SessionEvent, buffer)

	s.subMu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = ch
	s.subMu.Unlock()

	return &SessionSubscription{
		C: ch,
		stop: func() {
			s.subMu.Lock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
			s.subMu.Unlock()
		},
	}
}

func (s *UserService) publish(ev SessionEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// generateJWT 签发HS256 Token，携带uid与role
func (s *UserService) generateJWT(p *model.Profile) (string, error) {
	claims := jwt.MapClaims{
		"uid":  p.UserID,
		"role": string(p.Role),
		"exp":  time.Now().Add(time.Duration(s.jwtCfg.Expiry) * time.Second).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

func profileDTO(p *model.Profile) *model.ProfileDTO {
	display := p.DisplayName
	if strings.TrimSpace(display) == "" {
		display = p.Username
	}
	return &model.ProfileDTO{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: display,
		Role:        p.Role,
	}
}
