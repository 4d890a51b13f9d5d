package model

import "time"

// MemoryRow 远端 memories 表的一行，(user_id, date_str) 为复合唯一键
type MemoryRow struct {
	UserID      string   `json:"user_id"`
	DateStr     string   `json:"date_str"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Mood        string   `json:"mood"`
	Images      []string `json:"images"`
	VoiceURL    string   `json:"voice_url"`
	Tags        []string `json:"tags"`
}

// ToMemory 行转领域对象，同时恢复 imageUrl 兼容字段
func (r MemoryRow) ToMemory() Memory {
	m := Memory{
		DateStr:      r.DateStr,
		Title:        r.Title,
		Description:  r.Description,
		Mood:         r.Mood,
		Images:       r.Images,
		VoiceNoteURL: r.VoiceURL,
		Tags:         r.Tags,
	}
	if len(m.Images) > 0 {
		m.ImageURL = m.Images[0]
	}
	return m
}

// NewMemoryRow 领域对象转远端行
func NewMemoryRow(userID string, m Memory) MemoryRow {
	images := m.Images
	if len(images) == 0 && m.ImageURL != "" {
		images = []string{m.ImageURL}
	}
	return MemoryRow{
		UserID:      userID,
		DateStr:     m.DateStr,
		Title:       m.Title,
		Description: m.Description,
		Mood:        m.Mood,
		Images:      images,
		VoiceURL:    m.VoiceNoteURL,
		Tags:        m.Tags,
	}
}

// 配对关系状态
const (
	ShareStatusPending  = "pending"
	ShareStatusAccepted = "accepted"
)

// Share 两个身份之间的配对关系（邀请/接受）
type Share struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	PartnerID    string `json:"partner_id,omitempty"`
	PartnerEmail string `json:"partner_email,omitempty"`
	Status       string `json:"status"`
	InviteToken  string `json:"invite_token"`
}

// CounterpartOf 返回关系中另一方的身份；不含该身份时返回空串
func (s Share) CounterpartOf(userID string) string {
	switch userID {
	case s.OwnerID:
		return s.PartnerID
	case s.PartnerID:
		return s.OwnerID
	}
	return ""
}

// Profile 身份的展示名
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Letter 伴侣之间的慢递信，可定时送达
type Letter struct {
	ID          string     `json:"id"`
	FromUserID  string     `json:"from_user_id"`
	ToUserID    string     `json:"to_user_id"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// VisibleTo 收件人只能在送达时间之后看到定时信；发件人始终可见
func (l Letter) VisibleTo(userID string, now time.Time) bool {
	if l.FromUserID == userID {
		return true
	}
	if l.ToUserID != userID {
		return false
	}
	return l.ScheduledAt == nil || !l.ScheduledAt.After(now)
}

// SendLetterRequest 写信请求
type SendLetterRequest struct {
	Body        string     `json:"body" binding:"required"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// InviteRequest 发起配对邀请请求
type InviteRequest struct {
	PartnerEmail string `json:"partner_email" binding:"required"`
}

// AcceptInviteRequest 凭邀请码接受配对请求
type AcceptInviteRequest struct {
	InviteToken string `json:"invite_token" binding:"required"`
}
