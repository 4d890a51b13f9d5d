package model

import "time"

// Memory 单日记忆条目，按天唯一
type Memory struct {
	DateStr      string   `json:"dateStr"` // YYYY-MM-DD
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"imageUrl,omitempty"` // 旧版单图字段，始终与 images[0] 保持一致
	Images       []string `json:"images,omitempty"`   // 新版多图字段（编辑器限制 4 张，核心层不做限制）
	VoiceNoteURL string   `json:"voiceNoteUrl,omitempty"`
	Mood         string   `json:"mood"`
	Tags         []string `json:"tags"`
}

// MemoryMap 一个身份名下的全部记忆，按日期索引
type MemoryMap map[string]Memory

// MoodOption 心情选项，label 为唯一展示键，支持用户自定义追加
type MoodOption struct {
	Label      string `json:"label"`
	ColorClass string `json:"colorClass"`
	BaseColor  string `json:"baseColor"`
}

// DayData 派生的时间线单日描述，不做持久化
type DayData struct {
	Date      time.Time `json:"date"`
	DateStr   string    `json:"dateStr"`
	IsToday   bool      `json:"isToday"`
	IsPast    bool      `json:"isPast"`
	IsFuture  bool      `json:"isFuture"`
	HasMemory bool      `json:"hasMemory"`
	Memory    *Memory   `json:"memory,omitempty"`
	// 合并视图下伴侣当天的记忆（仅当存在伴侣映射时填充）
	PartnerMemory *Memory `json:"partnerMemory,omitempty"`
}

// DefaultMood 未指定心情时的默认值
const DefaultMood = "平淡"

// DefaultTitle 未填写标题时的默认值
const DefaultTitle = "Untitled"

// DefaultMoods 初始的七种心情选项
func DefaultMoods() []MoodOption {
	return []MoodOption{
		{Label: "喜悦", ColorClass: "bg-yellow-200 text-yellow-800", BaseColor: "yellow"},
		{Label: "平静", ColorClass: "bg-blue-200 text-blue-800", BaseColor: "blue"},
		{Label: "忧郁", ColorClass: "bg-indigo-200 text-indigo-800", BaseColor: "indigo"},
		{Label: "兴奋", ColorClass: "bg-rose-200 text-rose-800", BaseColor: "rose"},
		{Label: "惬意", ColorClass: "bg-orange-200 text-orange-800", BaseColor: "orange"},
		{Label: "被爱", ColorClass: "bg-pink-200 text-pink-800", BaseColor: "pink"},
		{Label: "平淡", ColorClass: "bg-slate-200 text-slate-800", BaseColor: "slate"},
	}
}

// SaveMemoryRequest 保存单日记忆请求（整条覆盖写，不支持局部更新）
type SaveMemoryRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Images       []string `json:"images,omitempty"`
	VoiceNoteURL string   `json:"voiceNoteUrl,omitempty"`
	Mood         string   `json:"mood"`
	Tags         []string `json:"tags,omitempty"`
}

// AddMoodRequest 新增心情选项请求
type AddMoodRequest struct {
	Label      string `json:"label" binding:"required"`
	ColorClass string `json:"colorClass" binding:"required"`
	BaseColor  string `json:"baseColor" binding:"required"`
}

// SessionRequest 建立远端身份请求
type SessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status      string `json:"status"`
	MemoryCount int    `json:"memory_count"`
	DayIndex    int    `json:"day_index"`
	Version     string `json:"version"`
}
