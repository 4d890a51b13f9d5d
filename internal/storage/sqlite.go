package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// 本地存储键，沿用前端时期的 localStorage 命名以便数据平移
const (
	KeyMemories        = "21months_memories"
	KeyMoods           = "21months_moods"
	KeyThemeID         = "21months_theme_id"
	KeyPartnerMemories = "21months_partner_memories"
)

// ErrCapacity 本地写入超出磁盘配额。存在远端镜像时调用方可以吞掉该错误。
var ErrCapacity = errors.New("本地存储空间不足")

// LocalStore 本地持久层：字符串键到 JSON 串的键值表，SQLite 承载
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore 创建并初始化本地存储
func NewLocalStore(dbPath string) (*LocalStore, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	store := &LocalStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return store, nil
}

// migrate 执行数据库建表
func (s *LocalStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get 读取一个键的原始 JSON 串；键不存在时返回 ok=false
func (s *LocalStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set 覆盖写一个键。磁盘写满映射为 ErrCapacity，其余错误原样上抛。
func (s *LocalStore) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil && isFullError(err) {
		return fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	return err
}

// isFullError 识别 SQLite 的磁盘/配额写满错误
func isFullError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk I/O error")
}

// LoadMemories 读取本人记忆映射；键不存在时返回空映射
func (s *LocalStore) LoadMemories() (model.MemoryMap, error) {
	return s.loadMemoryMap(KeyMemories)
}

// SaveMemories 整体覆盖写本人记忆映射
func (s *LocalStore) SaveMemories(memories model.MemoryMap) error {
	return s.saveJSON(KeyMemories, memories)
}

// LoadPartnerMemories 读取伴侣记忆镜像
func (s *LocalStore) LoadPartnerMemories() (model.MemoryMap, error) {
	return s.loadMemoryMap(KeyPartnerMemories)
}

// SavePartnerMemories 覆盖写伴侣记忆镜像
func (s *LocalStore) SavePartnerMemories(memories model.MemoryMap) error {
	return s.saveJSON(KeyPartnerMemories, memories)
}

// LoadMoods 读取心情选项；从未保存过时返回默认七项
func (s *LocalStore) LoadMoods() ([]model.MoodOption, error) {
	raw, ok, err := s.Get(KeyMoods)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.DefaultMoods(), nil
	}
	var moods []model.MoodOption
	if err := json.Unmarshal([]byte(raw), &moods); err != nil {
		return nil, fmt.Errorf("心情选项数据损坏: %w", err)
	}
	return moods, nil
}

// SaveMoods 覆盖写心情选项
func (s *LocalStore) SaveMoods(moods []model.MoodOption) error {
	return s.saveJSON(KeyMoods, moods)
}

// ThemeID 读取当前主题 id；核心层只做透传
func (s *LocalStore) ThemeID() (string, error) {
	raw, ok, err := s.Get(KeyThemeID)
	if err != nil || !ok {
		return "", err
	}
	return raw, nil
}

// SetThemeID 保存主题 id
func (s *LocalStore) SetThemeID(id string) error {
	return s.Set(KeyThemeID, id)
}

// Close 关闭数据库连接
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) loadMemoryMap(key string) (model.MemoryMap, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.MemoryMap{}, nil
	}
	var memories model.MemoryMap
	if err := json.Unmarshal([]byte(raw), &memories); err != nil {
		return nil, fmt.Errorf("记忆数据损坏: %w", err)
	}
	return memories, nil
}

func (s *LocalStore) saveJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	return s.Set(key, string(data))
}
