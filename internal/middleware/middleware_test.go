package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board_go/internal/core/config"
	"board_go/internal/core/logger"
	"board_go/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init(&config.LoggingConfig{Level: "error", Output: "stdout"})
	os.Exit(m.Run())
}

func signToken(t *testing.T, secret string, uid int64, role model.Role, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":  uid,
		"role": string(role),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func jwtRouter(cfg *config.JWTConfig) *gin.Engine {
	r := gin.New()
	r.GET("/secure", JWTMW(cfg), func(c *gin.Context) {
		uid := GetUID(c)
		c.JSON(200, gin.H{"uid": uid, "role": string(GetRole(c))})
	})
	r.GET("/admin", JWTMW(cfg), AdminRoleMW(), func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/open", OptionalJWTMW(cfg), func(c *gin.Context) {
		if GetUID(c) == nil {
			c.JSON(200, gin.H{"anon": true})
			return
		}
		c.JSON(200, gin.H{"anon": false})
	})
	return r
}

func TestJWTMW(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "secret", Expiry: 3600}
	r := jwtRouter(cfg)

	// 无Token
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/secure", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	// 缺Bearer前缀
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", signToken(t, "secret", 1, model.RoleUser, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	// 错误签名
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other", 1, model.RoleUser, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	// 过期Token
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", 1, model.RoleUser, -time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	// 合法Token
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", 42, model.RoleUser, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAdminRoleMW(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "secret", Expiry: 3600}
	r := jwtRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", 1, model.RoleUser, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 403, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", 1, model.RoleAdmin, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}

func TestOptionalJWTMW(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "secret", Expiry: 3600}
	r := jwtRouter(cfg)

	// 匿名放行
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/open", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"anon":true`)

	// 非法Token按匿名继续，不拦截
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"anon":true`)

	// 合法Token注入身份
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", 7, model.RoleUser, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"anon":false`)
}

func TestIPLimiter(t *testing.T) {
	limiter := NewIPLimiter(3, 60)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("203.0.113.1"), "request %d", i)
	}
	assert.False(t, limiter.Allow("203.0.113.1"))

	// 不同IP独立计数
	assert.True(t, limiter.Allow("203.0.113.2"))
}

func TestIPLimiterWindowExpiry(t *testing.T) {
	limiter := NewIPLimiter(1, 60)
	require.True(t, limiter.Allow("203.0.113.3"))
	require.False(t, limiter.Allow("203.0.113.3"))

	// 窗口外的记录过期
	limiter.mu.Lock()
	limiter.visits["203.0.113.3"] = []int64{time.Now().Unix() - 120}
	limiter.mu.Unlock()

	assert.True(t, limiter.Allow("203.0.113.3"))
}

func TestRateLimitMW(t *testing.T) {
	limiter := NewIPLimiter(1, 60)
	r := gin.New()
	r.GET("/", RateLimitMW(limiter), func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestIsLocalIP(t *testing.T) {
	local := []string{"localhost", "127.0.0.1", "127.8.8.8", "::1", "192.168.1.5", "10.0.0.1", "172.16.0.1", "172.31.255.255"}
	for _, ip := range local {
		assert.True(t, isLocalIP(ip), ip)
	}
	remote := []string{"8.8.8.8", "172.32.0.1", "203.0.113.1", "not-an-ip"}
	for _, ip := range remote {
		assert.False(t, isLocalIP(ip), ip)
	}
}

func TestIPChecker(t *testing.T) {
	checker := newIPChecker([]string{"203.0.113.7", "198.51.100.0/24", " ", ""})

	assert.True(t, checker.isAllowed("203.0.113.7"))
	assert.True(t, checker.isAllowed("198.51.100.42"))
	assert.False(t, checker.isAllowed("198.51.101.1"))
	assert.False(t, checker.isAllowed("203.0.113.8"))
	assert.False(t, checker.isAllowed("garbage"))
}

func TestParseJWTInvalid(t *testing.T) {
	_, err := ParseJWT("not-a-token", "secret")
	assert.Error(t, err)
}
