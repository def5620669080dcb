package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"board_go/internal/core/config"
	"board_go/internal/core/logger"
	"board_go/internal/model"
)

// LoggerMiddleware 请求日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.Int("status", status),
			logger.Duration("latency", latency),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware 异常恢复中间件
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					logger.String("error", fmt.Sprintf("%v", err)),
					logger.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(500, gin.H{
					"code": 500,
					"msg":  "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware CORS中间件
func CORSMiddleware() gin.HandlerFunc {
	corsCfg := &config.Get().Security.CORS

	return func(c *gin.Context) {
		if !corsCfg.Enabled {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")

		allowed := len(corsCfg.AllowedOrigins) == 0
		for _, o := range corsCfg.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if corsCfg.AllowCredentials {
				c.Header("Access-Control-Allow-Origin", origin)
			} else {
				if origin == "" {
					c.Header("Access-Control-Allow-Origin", "*")
				} else {
					c.Header("Access-Control-Allow-Origin", origin)
				}
			}
		}

		c.Header("Access-Control-Allow-Methods", strings.Join(corsCfg.AllowedMethods, ", "))
		c.Header("Access-Control-Allow-Headers", strings.Join(corsCfg.AllowedHeaders, ", "))
		c.Header("Access-Control-Allow-Credentials", fmt.Sprintf("%t", corsCfg.AllowCredentials))
		c.Header("Access-Control-Max-Age", fmt.Sprintf("%d", corsCfg.MaxAge))

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// JWTMW JWT中间件，解析成功后将uid/role写入上下文
func JWTMW(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{
				"code": 401,
				"msg":  "unauthorized",
			})
			return
		}

		if !strings.HasPrefix(token, "Bearer ") {
			c.AbortWithStatusJSON(401, gin.H{
				"code": 401,
				"msg":  "invalid token format: missing 'Bearer ' prefix",
			})
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := ParseJWT(token, cfg.Secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{
				"code": 401,
				"msg":  "invalid token",
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTMW 可选JWT中间件
// 带合法Token则注入uid/role，无Token或Token非法按匿名继续
func OptionalJWTMW(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
			if claims, err := ParseJWT(token, cfg.Secret); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AdminRoleMW 角色门卫，置于JWTMW之后
func AdminRoleMW() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != model.RoleAdmin {
			c.AbortWithStatusJSON(403, gin.H{
				"code": 403,
				"msg":  "forbidden",
			})
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims map[string]interface{}) {
	if uid, ok := claims["uid"].(float64); ok {
		c.Set("uid", int64(uid))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}

// GetUID 从上下文取uid，未登录返回nil
func GetUID(c *gin.Context) *int64 {
	if v, exists := c.Get("uid"); exists {
		if uid, ok := v.(int64); ok {
			return &uid
		}
	}
	return nil
}

// GetRole 从上下文取角色，未登录返回空
func GetRole(c *gin.Context) model.Role {
	if v, exists := c.Get("role"); exists {
		if role, ok := v.(string); ok {
			return model.Role(role)
		}
	}
	return ""
}

// ParseJWT 解析JWT
func ParseJWT(tokenString, secret string) (map[string]interface{}, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return map[string]interface{}(claims), nil
	}
	return nil, fmt.Errorf("invalid token")
}
