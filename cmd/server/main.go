// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vidhub-go/internal/config"
	"vidhub-go/internal/handler"
	"vidhub-go/internal/middleware"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/database"
	"vidhub-go/pkg/kafka"
	"vidhub-go/pkg/log"
	"vidhub-go/pkg/metrics"
	"vidhub-go/pkg/storage"
	"vidhub-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. 初始化配置
	configPath := os.Getenv("VIDHUB_CONFIG")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 和对象存储
	var models []interface{}
	if cfg.Database.MySQL.AutoMigrate {
		models = model.AllModels()
	}
	database.InitMySQL(cfg.Database.MySQL.DSN, models...)
	database.InitRedis(cfg.Database.Redis)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.NewObjectStore(startupCtx, cfg.Storage)
	cancelStartup()
	if err != nil {
		log.Fatal("对象存储初始化失败", err)
	}

	var publisher service.EventPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Brokers != "" {
		producer = kafka.NewProducer(cfg.Kafka)
		publisher = producer
	} else {
		log.Info("未配置 Kafka brokers，上传完成事件将不会发送")
	}

	var observer metrics.Observer = metrics.NopObserver{}
	if cfg.Metrics.Enabled {
		promObserver, err := metrics.NewPrometheusObserver(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
		if err != nil {
			log.Fatal("注册 Prometheus 指标失败", err)
		}
		observer = promObserver
	}

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	groupRepo := repository.NewGroupRepository(database.DB)
	videoRepo := repository.NewVideoRepository(database.DB)
	tokenRepo := repository.NewTokenRepository(database.RDB)
	progressRepo := repository.NewUploadProgressRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, tokenRepo, jwtManager)
	adminService := service.NewAdminService(userRepo)
	groupService := service.NewGroupService(groupRepo, videoRepo)
	uploadService := service.NewUploadService(groupRepo, videoRepo, progressRepo, store, publisher, observer, cfg.Storage)
	playbackService := service.NewPlaybackService(store, cfg.Storage.BucketName, observer)

	// 6. 初始化导入 seed 目录：每个子目录名即群组 ID，已导入则跳过
	seedCtx, cancelSeed := context.WithCancel(context.Background())
	defer cancelSeed()
	if cfg.Server.SeedDir != "" {
		go service.NewSeedImporter(groupRepo, videoRepo, uploadService).Import(seedCtx, cfg.Server.SeedDir)
	}

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxMemoryBytes
	r.Use(middleware.RequestLogger(), gin.Recovery())

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	authMiddleware := middleware.AuthMiddleware(jwtManager, userService)
	userHandler := handler.NewUserHandler(userService, jwtManager)
	authHandler := handler.NewAuthHandler(userService, jwtManager)
	adminHandler := handler.NewAdminHandler(adminService)
	groupHandler := handler.NewGroupHandler(groupService)
	storageHandler := handler.NewStorageHandler(uploadService, playbackService, cfg.Server.MaxBodyBytes)

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的路由
			authed := users.Group("")
			authed.Use(authMiddleware)
			{
				authed.GET("", userHandler.ListUsers)
				authed.GET("/me", userHandler.GetProfile)
				authed.GET("/:id", userHandler.GetUser)
				authed.POST("/logout", userHandler.Logout)
			}
		}

		groups := apiV1.Group("/groups")
		groups.Use(authMiddleware)
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.POST("/:groupId/join", groupHandler.JoinGroup)
			groups.GET("/:groupId/videos", groupHandler.ListGroupVideos)
		}

		// Storage 路由组：上传和播放需要认证
		storageGroup := apiV1.Group("/storage")
		{
			storageGroup.GET("/supported-types", storageHandler.GetSupportedTypes)
			storageGroup.POST("/upload/video/:groupId", authMiddleware, storageHandler.UploadVideo)
			storageGroup.GET("/playback/:key", authMiddleware, storageHandler.Playback)
			storageGroup.GET("/uploads/:key/progress", authMiddleware, storageHandler.GetUploadProgress)
		}

		apiV1.POST("/admin/login", authHandler.AdminLogin)
		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(authMiddleware, middleware.AdminAuthMiddleware())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.POST("/users/:id/restore", adminHandler.RestoreUser)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")
	cancelSeed()

	// 上传可能持续较久，给进行中的请求留出时间
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	log.Info("服务已优雅关闭")
}
