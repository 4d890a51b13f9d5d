package config

import (
	"os"
	"strconv"
	"time"
)

// Config 全局配置结构
type Config struct {
	// 服务监听端口
	Port string

	// SQLite 数据库文件路径（本地键值存储）
	DBPath string

	// HTTP API 鉴权令牌，留空则不鉴权
	AuthToken string

	// Supabase 配置（留空表示纯本地模式，不挂远端）
	SupabaseURL        string
	SupabaseServiceKey string
	// 媒体文件上传桶
	MediaBucket string

	// 启动时自动建立的远端身份（可选，通常由登录接口传入）
	RemoteUserID string

	// 后台对账间隔
	SyncInterval time.Duration
}

// RemoteEnabled 是否配置了远端存储
func (c *Config) RemoteEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// Load 从环境变量中加载配置
func Load() *Config {
	syncMinutes, _ := strconv.Atoi(getEnv("SYNC_INTERVAL_MINUTES", "5"))

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "./data/starriver.db"),
		AuthToken:          getEnv("AUTH_TOKEN", ""),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		MediaBucket:        getEnv("SUPABASE_MEDIA_BUCKET", "memories-media"),
		RemoteUserID:       getEnv("REMOTE_USER_ID", ""),
		SyncInterval:       time.Duration(syncMinutes) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
