package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"board_go/internal/core/config"
	"board_go/internal/core/logger"
	"board_go/internal/service"
)

// ipChecker IP 白名单检查器（支持 CIDR）
type ipChecker struct {
	allowNets []*net.IPNet
	allowSet  map[string]bool
}

func newIPChecker(allowIPs []string) *ipChecker {
	c := &ipChecker{allowSet: make(map[string]bool)}
	for _, ip := range allowIPs {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if _, ipNet, err := net.ParseCIDR(ip); err == nil {
			c.allowNets = append(c.allowNets, ipNet)
		} else {
			c.allowSet[ip] = true
		}
	}
	return c
}

// isLocalIP 检查是否是本地 IP (支持 IPv4 和 IPv6)
func isLocalIP(ipStr string) bool {
	if ipStr == "localhost" || ipStr == "127.0.0.1" || ipStr == "::1" {
		return true
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	if ipv4 := ip.To4(); ipv4 != nil {
		// 192.168.x.x
		if ipv4[0] == 192 && ipv4[1] == 168 {
			return true
		}
		// 10.x.x.x
		if ipv4[0] == 10 {
			return true
		}
		// 172.16-31.x.x
		if ipv4[0] == 172 && ipv4[1] >= 16 && ipv4[1] <= 31 {
			return true
		}
		// 127.x.x.x (loopback)
		if ipv4[0] == 127 {
			return true
		}
	}

	return ip.IsLoopback()
}

func (c *ipChecker) isAllowed(ipStr string) bool {
	if c.allowSet[ipStr] {
		return true
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range c.allowNets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// AdminWhitelistMW 管理接口 IP 白名单中间件
// - 本地/内网 IP 自动放行
// - 显式配置的白名单 IP（支持 CIDR）放行
// - 其余拒绝
func AdminWhitelistMW() gin.HandlerFunc {
	checker := newIPChecker(config.Get().Security.AdminAllowIPs)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		realIP := c.GetHeader("X-Real-IP")

		// 代理场景优先检查 X-Real-IP
		if realIP != "" && (isLocalIP(realIP) || checker.isAllowed(realIP)) {
			c.Next()
			return
		}

		if isLocalIP(clientIP) || checker.isAllowed(clientIP) {
			c.Next()
			return
		}

		logger.Warn("admin access denied: IP not in whitelist",
			logger.String("ip", clientIP),
			logger.String("real_ip", realIP),
			logger.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "access denied: IP not in whitelist",
		})
	}
}

// BanMW 封禁 IP 拦截中间件
func BanMW(bans *service.BanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if bans.IsBanned(c.Request.Context(), ip) {
			logger.Warn("banned ip blocked",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": 403,
				"msg":  "access denied",
			})
			return
		}
		c.Next()
	}
}

// IPLimiter IP频率限制器，滑动窗口
type IPLimiter struct {
	mu     sync.Mutex
	visits map[string][]int64
	limit  int
	window int64
}

// NewIPLimiter 创建IP限制器
func NewIPLimiter(limit int, windowSeconds int) *IPLimiter {
	return &IPLimiter{
		visits: make(map[string][]int64),
		limit:  limit,
		window: int64(windowSeconds),
	}
}

// Allow 检查是否允许访问
func (l *IPLimiter) Allow(ip string) bool {
	now := time.Now().Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	// 清理过期记录
	var valid []int64
	for _, ts := range l.visits[ip] {
		if now-ts < l.window {
			valid = append(valid, ts)
		}
	}
	l.visits[ip] = valid

	if len(l.visits[ip]) >= l.limit {
		return false
	}

	l.visits[ip] = append(l.visits[ip], now)
	return true
}

// RateLimitMW 频率限制中间件
func RateLimitMW(limiter *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.Allow(ip) {
			logger.Warn("rate limit exceeded",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": 429,
				"msg":  "too many requests",
			})
			return
		}

		c.Next()
	}
}
