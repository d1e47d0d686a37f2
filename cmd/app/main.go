package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shortlink-service/internal/config"
	"shortlink-service/internal/handler"
	"shortlink-service/internal/i18n"
	"shortlink-service/internal/middleware"
	"shortlink-service/internal/repository"
	"shortlink-service/internal/service"
	"shortlink-service/pkg/codegen"
	"shortlink-service/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志系统
	logger := logging.Init(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	defer func() { _ = logger.Sync() }()

	logger.Info("Application started")

	db, err := repository.NewDB(cfg.DB, logger, logging.AtomicLevel)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	redisPool := repository.NewRedisPool(cfg.Redis, logger)

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n(cfg.I18n.Files, cfg.I18n.DefaultLanguage)
	if err != nil {
		logger.Fatal("Failed to load i18n message files", zap.Error(err))
	}

	generate, err := codegen.NewBase62(cfg.Shortener.CodeLength)
	if err != nil {
		logger.Fatal("Invalid short code length", zap.Error(err))
	}

	// 数据访问层
	linkRepo := repository.NewShortLinkRepository(db)
	whitelistRepo := repository.NewWhitelistRepository(db)
	linkCache := repository.NewLinkCache(redisPool, cfg.Cache)
	tokenCache := repository.NewTokenCache(redisPool, repository.DefaultTokenTTL)

	// 外部调用共用的池化 HTTP 客户端
	ssoClient := &http.Client{Timeout: cfg.SSO.Timeout}

	var probe service.ReachabilityChecker
	if cfg.Validation.CheckReachability {
		probeClient := &http.Client{Timeout: cfg.Validation.ProbeTimeout}
		probe = service.NewHTTPReachabilityChecker(probeClient, cfg.Validation.ProbeTimeout)
	}

	// 业务层
	whitelistSvc := service.NewWhitelistDomainService(whitelistRepo, logger)
	linkSvc := service.NewShortLinkService(linkRepo, linkCache, whitelistSvc, probe,
		generate, cfg.Shortener.MaxRetries, logger)
	authSvc := service.NewAuthService(ssoClient, tokenCache, cfg.SSO, logger)

	// 接入层
	linkHandler := handler.NewShortLinkHandler(linkSvc, cfg.Server.BaseURL, logger)
	whitelistHandler := handler.NewWhitelistDomainHandler(whitelistSvc, logger)
	authHandler := handler.NewAuthHandler(authSvc, logger)
	healthHandler := handler.NewHealthHandler(
		func(ctx context.Context) error { return repository.PingDB(ctx, db) },
		linkCache.Ping,
	)

	r := gin.New()
	r.Use(gin.Recovery()) // 显式添加 Recovery 中间件

	// 注册全局错误中间件
	r.Use(middleware.GlobalErrorMiddleware(logger))
	r.Use(middleware.ZapGinLogger(logger))
	r.Use(middleware.CorsMiddleware(cfg.CORS.AllowedOrigins))
	// 使用 i18n 中间件
	r.Use(middleware.I18nMiddleware(bundle))

	r.GET("/healthz", healthHandler.Health)
	r.POST("/auth/callback", authHandler.Callback)

	authRequired := middleware.AuthMiddleware(authSvc)
	r.GET("/me", authRequired, authHandler.Me)

	api := r.Group("/api")
	api.Use(authRequired)
	if cfg.RateLimit.Enabled {
		rateLimit, err := middleware.RateLimitMiddleware(cfg.RateLimit)
		if err != nil {
			logger.Fatal("Invalid rate limit config", zap.Error(err))
		}
		api.Use(rateLimit)
	}
	{
		api.POST("/shortlink", linkHandler.Create)
		api.GET("/shortlink", linkHandler.List)
		api.GET("/shortlink/:id", linkHandler.Get)
		api.PUT("/shortlink/status/:id", linkHandler.UpdateStatus)
		api.DELETE("/shortlink/:id", linkHandler.Delete)

		api.POST("/whitelist", whitelistHandler.Create)
		api.GET("/whitelist", whitelistHandler.List)
		api.DELETE("/whitelist/:id", whitelistHandler.Delete)
	}

	// 其余路径全部按短码跳转兜底
	r.NoRoute(linkHandler.Redirect)

	// 定时清理到期短链缓存
	cronRunner := cron.New()
	_, addErr := cronRunner.AddFunc(cfg.Sweep.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := linkSvc.SweepExpired(ctx, cfg.Sweep.Lookback); err != nil {
			logger.Error("Expired link sweep failed", zap.Error(err))
		}
	})
	if addErr != nil {
		logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}
	cronRunner.Start()

	startServer(cfg.Server.Addr, r, logger, func() {
		cronRunner.Stop()
		if err := redisPool.Close(); err != nil {
			logger.Warn("Redis pool close failed", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Database close failed", zap.Error(err))
			}
		}
	})
}

func startServer(addr string, r *gin.Engine, logger *zap.Logger, cleanup func()) {
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	cleanup()
	logger.Info("Server exiting")
}
