package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xiaotiyanlove-star/starriver/config"
	"github.com/xiaotiyanlove-star/starriver/internal/merge"
	"github.com/xiaotiyanlove-star/starriver/internal/migrate"
	"github.com/xiaotiyanlove-star/starriver/internal/model"
	"github.com/xiaotiyanlove-star/starriver/internal/remote"
	"github.com/xiaotiyanlove-star/starriver/internal/snapshot"
	"github.com/xiaotiyanlove-star/starriver/internal/storage"
	"github.com/xiaotiyanlove-star/starriver/internal/timeline"
)

// ErrNoIdentity 操作需要已建立的远端身份
var ErrNoIdentity = errors.New("尚未建立远端身份")

// ErrNoPartner 操作需要一段已接受的配对关系
var ErrNoPartner = errors.New("尚未配对伴侣")

// JournalService 持久化网关：所有变更先落本地存储，
// 建立远端身份后再镜像到远端；加载时以远端为准。
type JournalService struct {
	cfg    *config.Config
	local  LocalStore
	remote remote.Store // 未配置远端时为 nil

	// mu 保护身份字段：后台对账协程与请求处理协程并发读写
	mu        sync.RWMutex
	userID    string
	partnerID string
}

// LocalStore 本地持久层能力，生产实现是 *storage.LocalStore
type LocalStore interface {
	LoadMemories() (model.MemoryMap, error)
	SaveMemories(model.MemoryMap) error
	LoadPartnerMemories() (model.MemoryMap, error)
	SavePartnerMemories(model.MemoryMap) error
	LoadMoods() ([]model.MoodOption, error)
	SaveMoods([]model.MoodOption) error
	ThemeID() (string, error)
	SetThemeID(string) error
	Get(key string) (string, bool, error)
}

// NewJournalService 创建日记服务实例。remoteStore 传 nil 表示纯本地模式。
func NewJournalService(cfg *config.Config, local LocalStore, remoteStore remote.Store) *JournalService {
	return &JournalService{
		cfg:    cfg,
		local:  local,
		remote: remoteStore,
	}
}

// identity 取一次身份快照，整个操作内保持一致视图
func (s *JournalService) identity() (userID, partnerID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.partnerID
}

func (s *JournalService) setIdentity(userID, partnerID string) {
	s.mu.Lock()
	s.userID = userID
	s.partnerID = partnerID
	s.mu.Unlock()
}

// remoteActive 远端身份是否已建立
func (s *JournalService) remoteActive() bool {
	userID, _ := s.identity()
	return s.remote != nil && userID != ""
}

// UserID 当前身份；未登录时为空串
func (s *JournalService) UserID() string {
	userID, _ := s.identity()
	return userID
}

// PartnerID 已配对伴侣的身份；无配对时为空串
func (s *JournalService) PartnerID() string {
	_, partnerID := s.identity()
	return partnerID
}

// LoadMemories 读取本人记忆映射，旧版形态顺带迁移。
// 仅当确有记录被改写时回写本地，避免无意义的重复写入。
func (s *JournalService) LoadMemories() (model.MemoryMap, error) {
	raw, err := s.local.LoadMemories()
	if err != nil {
		return nil, fmt.Errorf("读取本地记忆失败: %w", err)
	}

	memories, changed := migrate.Normalize(raw)
	if changed {
		if err := s.local.SaveMemories(memories); err != nil {
			// 迁移回写失败不阻塞读取，下次加载会重试
			log.Printf("[WARN] 旧版数据迁移回写失败: %v", err)
		}
	}
	return memories, nil
}

// PartnerMemories 读取伴侣记忆镜像
func (s *JournalService) PartnerMemories() (model.MemoryMap, error) {
	return s.local.LoadPartnerMemories()
}

// Timeline 生成时间线。view 为 "merged" 且存在伴侣镜像时返回双人视图。
func (s *JournalService) Timeline(view string) ([]model.DayData, error) {
	memories, err := s.LoadMemories()
	if err != nil {
		return nil, err
	}

	var partner model.MemoryMap
	if view == "merged" {
		partner, err = s.local.LoadPartnerMemories()
		if err != nil {
			return nil, fmt.Errorf("读取伴侣镜像失败: %w", err)
		}
	}
	return timeline.Generate(memories, partner, timeline.StartDate(), timeline.TargetEndDate(), time.Now()), nil
}

// GetDay 读取某一天双方的记忆；当天都没写过时两者皆空
func (s *JournalService) GetDay(dateStr string) (mine, partner *model.Memory, err error) {
	if _, perr := time.Parse(timeline.DateLayout, dateStr); perr != nil {
		return nil, nil, fmt.Errorf("日期格式错误: %w", perr)
	}
	memories, err := s.LoadMemories()
	if err != nil {
		return nil, nil, err
	}
	if m, ok := memories[dateStr]; ok {
		mine = &m
	}
	partnerMap, err := s.local.LoadPartnerMemories()
	if err != nil {
		return nil, nil, err
	}
	if m, ok := partnerMap[dateStr]; ok {
		partner = &m
	}
	return mine, partner, nil
}

// SaveMemory 保存某一天的记忆，整条覆盖写。
// 流程: 先解析内联媒体（已登录时上传换取 URL，单项失败只丢该项），
// 再带着 images/imageUrl 一致性约束构建记录，落本地，最后镜像远端。
func (s *JournalService) SaveMemory(ctx context.Context, dateStr string, req *model.SaveMemoryRequest) (*model.Memory, error) {
	if _, err := time.Parse(timeline.DateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("日期格式错误: %w", err)
	}

	// 整个保存流程用同一份身份快照，不受并发对账影响
	userID, _ := s.identity()
	remoteOn := s.remote != nil && userID != ""

	// 图片列表优先，旧版单图字段兜底
	images := req.Images
	if len(images) == 0 && req.ImageURL != "" {
		images = []string{req.ImageURL}
	}
	voice := req.VoiceNoteURL

	// 阶段一: 媒体引用解析
	if remoteOn {
		images = s.resolveInlineImages(ctx, userID, dateStr, images)
		if remote.IsDataURL(voice) {
			url, err := s.uploadInline(ctx, userID, dateStr, voice)
			if err != nil {
				log.Printf("[WARN] 录音上传失败，本次保存略过该字段: %v", err)
				voice = ""
			} else {
				voice = url
			}
		}
	}

	// 阶段二: 构建最终记录
	mem := model.Memory{
		DateStr:      dateStr,
		Title:        req.Title,
		Description:  req.Description,
		Mood:         req.Mood,
		Images:       images,
		VoiceNoteURL: voice,
		Tags:         req.Tags,
	}
	if mem.Title == "" {
		mem.Title = model.DefaultTitle
	}
	if mem.Mood == "" {
		mem.Mood = model.DefaultMood
	}
	if mem.Tags == nil {
		mem.Tags = []string{}
	}
	if len(mem.Images) > 0 {
		mem.ImageURL = mem.Images[0]
	}

	// 阶段三: 本地落盘
	memories, err := s.LoadMemories()
	if err != nil {
		return nil, err
	}
	memories[dateStr] = mem
	if err := s.local.SaveMemories(memories); err != nil {
		if errors.Is(err, storage.ErrCapacity) && remoteOn {
			// 远端副本就是事实源，本地配额不足只告警
			log.Printf("[WARN] 本地写入超出配额，依赖远端副本: %v", err)
		} else {
			return nil, fmt.Errorf("保存记忆失败: %w", err)
		}
	}

	// 阶段四: 远端镜像，失败只记日志不回滚
	if remoteOn {
		if err := s.remote.UpsertMemory(ctx, model.NewMemoryRow(userID, mem)); err != nil {
			log.Printf("[WARN] 远端同步失败，本地副本仍然有效: %v", err)
		}
	}
	return &mem, nil
}

// resolveInlineImages 逐张上传内联图片，失败的单项直接丢弃
func (s *JournalService) resolveInlineImages(ctx context.Context, userID, dateStr string, images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if !remote.IsDataURL(img) {
			out = append(out, img)
			continue
		}
		url, err := s.uploadInline(ctx, userID, dateStr, img)
		if err != nil {
			log.Printf("[WARN] 图片上传失败，本次保存略过该项: %v", err)
			continue
		}
		out = append(out, url)
	}
	return out
}

// uploadInline 解码一段 data URL 并上传到远端媒体桶
func (s *JournalService) uploadInline(ctx context.Context, userID, dateStr, dataURL string) (string, error) {
	mimeType, data, err := remote.DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	return s.remote.UploadMedia(ctx, userID, dateStr, data, mimeType)
}

// EstablishIdentity 登录后建立远端身份并做一次全量对账：
// 拉取可见行，按归属切分，本人部分覆盖本地（登录后远端为准），
// 伴侣部分写入本地镜像。
func (s *JournalService) EstablishIdentity(ctx context.Context, userID string) error {
	if s.remote == nil {
		return ErrNoIdentity
	}
	// 对账成功之前不提交身份，失败时保持未登录状态
	partnerID, err := s.reconcile(ctx, userID)
	if err != nil {
		return err
	}
	s.setIdentity(userID, partnerID)
	log.Printf("[INFO] 远端身份已建立: %s (伴侣: %q)", userID, partnerID)
	return nil
}

// SyncFromRemote 以当前身份执行一次远端到本地的对账
func (s *JournalService) SyncFromRemote(ctx context.Context) error {
	userID, _ := s.identity()
	if s.remote == nil || userID == "" {
		return ErrNoIdentity
	}
	partnerID, err := s.reconcile(ctx, userID)
	if err != nil {
		return err
	}
	s.setIdentity(userID, partnerID)
	return nil
}

// reconcile 拉取 userID 可见的远端行，按归属切分后覆盖本地两份映射，
// 返回当前配对的伴侣身份
func (s *JournalService) reconcile(ctx context.Context, userID string) (string, error) {
	partnerID, err := s.remote.FindPartner(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("查询配对关系失败: %w", err)
	}

	rows, err := s.remote.FetchVisibleMemories(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("远端对账失败: %w", err)
	}

	mine := model.MemoryMap{}
	partner := model.MemoryMap{}
	for _, row := range rows {
		switch row.UserID {
		case userID:
			mine[row.DateStr] = row.ToMemory()
		case partnerID:
			if partnerID != "" {
				partner[row.DateStr] = row.ToMemory()
			}
		}
	}

	if err := s.local.SaveMemories(mine); err != nil && !errors.Is(err, storage.ErrCapacity) {
		return "", fmt.Errorf("镜像本人记忆失败: %w", err)
	}
	if err := s.local.SavePartnerMemories(partner); err != nil && !errors.Is(err, storage.ErrCapacity) {
		return "", fmt.Errorf("镜像伴侣记忆失败: %w", err)
	}
	return partnerID, nil
}

// Moods 读取心情选项
func (s *JournalService) Moods() ([]model.MoodOption, error) {
	return s.local.LoadMoods()
}

// AddMood 追加一个新的心情选项；label 已存在时不重复追加
func (s *JournalService) AddMood(opt model.MoodOption) ([]model.MoodOption, error) {
	moods, err := s.local.LoadMoods()
	if err != nil {
		return nil, err
	}
	for _, existing := range moods {
		if existing.Label == opt.Label {
			return moods, nil
		}
	}
	moods = append(moods, opt)
	if err := s.local.SaveMoods(moods); err != nil {
		return nil, fmt.Errorf("保存心情选项失败: %w", err)
	}
	return moods, nil
}

// ThemeID 读取主题 id
func (s *JournalService) ThemeID() (string, error) { return s.local.ThemeID() }

// SetThemeID 保存主题 id
func (s *JournalService) SetThemeID(id string) error { return s.local.SetThemeID(id) }

// ExportSnapshot 导出当前本地状态为快照文档
func (s *JournalService) ExportSnapshot() (snapshot.Document, error) {
	memories, err := s.LoadMemories()
	if err != nil {
		return snapshot.Document{}, err
	}
	moods, err := s.local.LoadMoods()
	if err != nil {
		return snapshot.Document{}, err
	}
	return snapshot.Export(memories, moods, time.Now()), nil
}

// ImportSnapshot 导入一份快照文档并与当前状态合并。
// 校验不通过时不触碰任何状态；通过后文档一侧作为 remote 参与合并。
// 返回合并后记忆总数。
func (s *JournalService) ImportSnapshot(ctx context.Context, data []byte) (int, error) {
	doc, err := snapshot.Decode(data)
	if err != nil {
		return 0, err
	}

	userID, _ := s.identity()
	remoteOn := s.remote != nil && userID != ""

	memories, err := s.LoadMemories()
	if err != nil {
		return 0, err
	}
	moods, err := s.local.LoadMoods()
	if err != nil {
		return 0, err
	}

	// 导入的记录也可能是旧版形态，合并前先归一
	incoming, _ := migrate.Normalize(doc.Memories)
	mergedMemories := merge.Maps(memories, incoming)
	mergedMoods := merge.MoodOptions(moods, doc.MoodOptions)

	if err := s.local.SaveMemories(mergedMemories); err != nil {
		if errors.Is(err, storage.ErrCapacity) && remoteOn {
			log.Printf("[WARN] 本地写入超出配额，依赖远端副本: %v", err)
		} else {
			return 0, fmt.Errorf("保存合并结果失败: %w", err)
		}
	}
	if err := s.local.SaveMoods(mergedMoods); err != nil {
		// 配额不足的吞错同样以远端副本存在为前提
		if errors.Is(err, storage.ErrCapacity) && remoteOn {
			log.Printf("[WARN] 本地写入超出配额，依赖远端副本: %v", err)
		} else {
			return 0, fmt.Errorf("保存心情选项失败: %w", err)
		}
	}

	// 合并结果镜像远端，逐条幂等写，失败只记日志
	if remoteOn {
		for _, mem := range mergedMemories {
			if err := s.remote.UpsertMemory(ctx, model.NewMemoryRow(userID, mem)); err != nil {
				log.Printf("[WARN] 合并结果远端同步失败 (%s): %v", mem.DateStr, err)
			}
		}
	}
	return len(mergedMemories), nil
}

// MemoryCount 本人记忆总数
func (s *JournalService) MemoryCount() (int, error) {
	memories, err := s.LoadMemories()
	if err != nil {
		return 0, err
	}
	return len(memories), nil
}

// TodayIndex 今天是起点后的第几天
func (s *JournalService) TodayIndex() int {
	return timeline.DayIndex(time.Now(), timeline.StartDate())
}

// PartnerProfile 查询伴侣的展示名
func (s *JournalService) PartnerProfile(ctx context.Context) (*model.Profile, error) {
	userID, partnerID := s.identity()
	if s.remote == nil || userID == "" {
		return nil, ErrNoIdentity
	}
	if partnerID == "" {
		return nil, ErrNoPartner
	}
	return s.remote.Profile(ctx, partnerID)
}

// CreateInvite 创建一条配对邀请
func (s *JournalService) CreateInvite(ctx context.Context, partnerEmail string) (*model.Share, error) {
	userID, _ := s.identity()
	if s.remote == nil || userID == "" {
		return nil, ErrNoIdentity
	}
	return s.remote.CreateInvite(ctx, userID, partnerEmail)
}

// AcceptInvite 以当前身份接受邀请，成功后立即做一次对账拉取对方记忆
func (s *JournalService) AcceptInvite(ctx context.Context, inviteToken string) (*model.Share, error) {
	userID, _ := s.identity()
	if s.remote == nil || userID == "" {
		return nil, ErrNoIdentity
	}
	share, err := s.remote.AcceptInvite(ctx, inviteToken, userID)
	if err != nil {
		return nil, err
	}
	if err := s.SyncFromRemote(ctx); err != nil {
		log.Printf("[WARN] 配对成功但对账失败，等待下次同步: %v", err)
	}
	return share, nil
}
