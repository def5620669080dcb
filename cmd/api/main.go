package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"board_go/internal/api/mgt"
	v1 "board_go/internal/api/v1"
	"board_go/internal/core/config"
	"board_go/internal/core/database"
	"board_go/internal/core/logger"
	"board_go/internal/core/snowflake"
	"board_go/internal/middleware"
	"board_go/internal/repository"
	"board_go/internal/service"
)

func main() {
	// 1. 加载配置 (Viper)
	if err := config.Init("."); err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 2. 初始化 Logger
	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting board_go...")

	// 3. 初始化 MySQL
	if err := database.Init(&cfg.Database); err != nil {
		logger.Error("Failed to init database", logger.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	// 4. 初始化 Redis (L2 Cache)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	// 5. 初始化 Snowflake
	if err := snowflake.Init(&cfg.Snowflake); err != nil {
		logger.Error("Failed to init snowflake", logger.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. 初始化 Repository
	postRepo := repository.NewPostRepository(database.Get())
	keyRepo := repository.NewSecurityKeyRepository(database.Get())
	profileRepo := repository.NewProfileRepository(database.Get())
	reportRepo := repository.NewReportRepository(database.Get())
	contactRepo := repository.NewContactRepository(database.Get())
	banRepo := repository.NewBanRepository(database.Get())

	// 7. 初始化 Service
	keySvc := service.NewSecurityKeyService(keyRepo)
	postSvc := service.NewPostService(postRepo, profileRepo, keySvc, redisClient, &cfg.Cache, &cfg.Board)
	userSvc := service.NewUserService(profileRepo, redisClient, &cfg.Cache, &cfg.JWT)
	reportSvc := service.NewReportService(reportRepo, postRepo)
	contactSvc := service.NewContactService(contactRepo)
	banSvc := service.NewBanService(banRepo)

	// 8. 会话事件订阅（登录/登出审计）
	sessionSub := userSvc.SubscribeSessions(64)
	defer sessionSub.Unsubscribe()
	go func() {
		for ev := range sessionSub.C {
			logger.Info("session event",
				logger.String("type", string(ev.Type)),
				logger.Int64("user_id", ev.UserID))
		}
	}()

	// 9. 初始化 Handler
	boardV1Handler := v1.NewBoardHandler(postSvc, reportSvc)
	authV1Handler := v1.NewAuthHandler(userSvc)
	contactV1Handler := v1.NewContactHandler(contactSvc)
	keyV1Handler := v1.NewSecurityKeyHandler(keySvc)

	boardMgtHandler := mgt.NewBoardHandler(postSvc)
	keyMgtHandler := mgt.NewSecurityKeyHandler(keySvc)
	reportMgtHandler := mgt.NewReportHandler(reportSvc)
	banMgtHandler := mgt.NewBanHandler(banSvc)
	cacheMgtHandler := mgt.NewCacheHandler(postSvc)

	// 10. 创建 IP 限制器
	rateLimiter := middleware.NewIPLimiter(cfg.Security.RateLimit, 60)

	// 11. 注册路由
	gin.SetMode(cfg.App.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.RateLimitMW(rateLimiter))
	router.Use(middleware.CORSMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health Check (跳过 IP 检查)
	router.GET("/health", func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	// Health Check (详细版 - 用于负载均衡)
	router.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		checks := make(map[string]string)

		// 检查 MySQL
		if err := database.Ping(); err != nil {
			status = "error"
			checks["mysql"] = err.Error()
		} else {
			checks["mysql"] = "ok"
		}

		// 检查 Redis
		ctx := context.Background()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			status = "error"
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}

		code := 200
		if status != "ok" {
			code = 503
		}
		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().Unix(),
		})
	})

	// Root path (跳过 IP 检查)
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    "board_go",
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Metrics (跳过 IP 检查)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API (v1) - 封禁 IP 拦截
	v1Group := router.Group("/api/v1")
	v1Group.Use(middleware.BanMW(banSvc))
	{
		// Board
		v1Group.GET("/posts", boardV1Handler.List)
		v1Group.GET("/post/:id", boardV1Handler.Get)
		v1Group.GET("/post/:id/thread", boardV1Handler.Thread)
		v1Group.POST("/posts", middleware.OptionalJWTMW(&cfg.JWT), boardV1Handler.Create)
		v1Group.DELETE("/post/:id", boardV1Handler.Delete)
		v1Group.POST("/post/:id/view", boardV1Handler.View)
		v1Group.POST("/post/:id/report", boardV1Handler.Report)

		// Security key requests
		v1Group.POST("/key-requests", keyV1Handler.CreateRequest)

		// Contact
		v1Group.POST("/contacts", contactV1Handler.Create)

		// Auth
		v1Group.POST("/auth/register", authV1Handler.Register)
		v1Group.POST("/auth/login", authV1Handler.Login)
		v1Group.POST("/auth/logout", middleware.JWTMW(&cfg.JWT), authV1Handler.Logout)
		v1Group.GET("/auth/me", middleware.JWTMW(&cfg.JWT), authV1Handler.Me)
	}

	// Management API (mgt) - 强制 IP 白名单 + JWT + Admin 角色
	mgtGroup := router.Group("/api/mgt")
	mgtGroup.Use(middleware.AdminWhitelistMW())
	mgtGroup.Use(middleware.JWTMW(&cfg.JWT))
	mgtGroup.Use(middleware.AdminRoleMW())
	{
		// Board
		mgtGroup.GET("/post/:id", boardMgtHandler.GetSensitive)
		mgtGroup.DELETE("/post/:id", boardMgtHandler.Delete)

		// Security keys
		mgtGroup.GET("/keys", keyMgtHandler.List)
		mgtGroup.POST("/keys", keyMgtHandler.Create)
		mgtGroup.POST("/key/:id/deactivate", keyMgtHandler.Deactivate)
		mgtGroup.GET("/key-requests", keyMgtHandler.ListRequests)
		mgtGroup.POST("/key-request/:id/process", keyMgtHandler.ProcessRequest)

		// Reports
		mgtGroup.GET("/reports", reportMgtHandler.List)
		mgtGroup.POST("/report/:id/process", reportMgtHandler.Process)

		// IP bans
		mgtGroup.GET("/bans", banMgtHandler.List)
		mgtGroup.POST("/bans", banMgtHandler.Ban)
		mgtGroup.DELETE("/ban/:ip", banMgtHandler.Unban)

		// Cache
		mgtGroup.POST("/cache/flush", cacheMgtHandler.Flush)
	}

	// 12. 启动 HTTP Server
	srv := &http.Server{
		Addr:    cfg.App.GetServerAddr(),
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", logger.String("error", err.Error()))
		}
	}()

	// pprof Server (可选，用于性能分析)
	go func() {
		logger.Info("PProf server starting", logger.String("addr", "localhost:6060"))
		if err := http.ListenAndServe("localhost:6060", nil); err != nil && err != http.ErrServerClosed {
			logger.Error("PProf server error", logger.String("error", err.Error()))
		}
	}()

	// Graceful shutdown (优雅关闭)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.String("error", err.Error()))
	}

	database.Close()
	redisClient.Close()
	logger.Sync()

	logger.Info("Server exited gracefully")
}
