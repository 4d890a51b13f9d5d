package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/xiaotiyanlove-star/starriver/config"
	"github.com/xiaotiyanlove-star/starriver/internal/api"
	"github.com/xiaotiyanlove-star/starriver/internal/core"
	"github.com/xiaotiyanlove-star/starriver/internal/remote"
	"github.com/xiaotiyanlove-star/starriver/internal/storage"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化本地存储
	local, err := storage.NewLocalStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("初始化本地存储失败: %v", err)
	}
	defer local.Close()

	// 可选的远端存储
	var remoteStore remote.Store
	if cfg.RemoteEnabled() {
		rs, err := remote.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.MediaBucket)
		if err != nil {
			log.Fatalf("初始化远端存储失败: %v", err)
		}
		remoteStore = rs
		log.Println("[INFO] 远端存储已配置，登录后本地将作为缓存")
	} else {
		log.Println("[INFO] 纯本地模式运行")
	}

	// 初始化核心服务
	service := core.NewJournalService(cfg, local, remoteStore)

	// 配置了固定身份时启动即登录并对账
	if cfg.RemoteUserID != "" && remoteStore != nil {
		if err := service.EstablishIdentity(context.Background(), cfg.RemoteUserID); err != nil {
			log.Printf("[WARN] 启动时建立远端身份失败，可稍后通过接口重试: %v", err)
		}
	}

	// 启动后台对账调度器
	var syncScheduler *core.SyncScheduler
	if remoteStore != nil {
		syncScheduler = core.NewSyncScheduler(service, cfg.SyncInterval)
		syncScheduler.Start()
	}

	// 初始化 HTTP 路由
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// 1. Payload 尺寸防御中间件（图片以 data URL 内联提交，上限放宽到 32MB）
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 32<<20)
		c.Next()
	})

	// 2. 轻量鉴权中间件
	if cfg.AuthToken != "" {
		r.Use(func(c *gin.Context) {
			if c.Request.URL.Path == "/health" {
				c.Next()
				return
			}
			// 优先读取 Authorization 头，其次读取 X-API-KEY
			token := c.GetHeader("Authorization")
			if len(token) > 7 && token[:7] == "Bearer " {
				token = token[7:]
			}
			if token == "" {
				token = c.GetHeader("X-API-KEY")
			}
			if token != cfg.AuthToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid or missing API token"})
				c.Abort()
				return
			}
			c.Next()
		})
	}

	handler := api.NewHandler(service)
	handler.RegisterRoutes(r)

	// 优雅退出
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("收到退出信号，正在关闭服务...")
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		os.Exit(0)
	}()

	log.Printf("StarRiver 服务启动，监听端口 :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}
