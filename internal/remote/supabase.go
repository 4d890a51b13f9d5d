package remote

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// SupabaseStore 基于 Supabase 的远端实现：
// memories/shares/profiles/letters 四张表 + 一个公开媒体桶
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

// NewSupabaseStore 创建远端存储客户端
func NewSupabaseStore(url, serviceKey, bucket string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("创建 Supabase 客户端失败: %w", err)
	}
	return &SupabaseStore{client: client, bucket: bucket}, nil
}

// FetchVisibleMemories 拉取本人以及已配对伴侣的全部记忆行
func (s *SupabaseStore) FetchVisibleMemories(ctx context.Context, userID string) ([]model.MemoryRow, error) {
	partnerID, err := s.FindPartner(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter := s.client.From("memories").Select("*", "", false)
	if partnerID != "" {
		filter = filter.Or(fmt.Sprintf("user_id.eq.%s,user_id.eq.%s", userID, partnerID), "")
	} else {
		filter = filter.Eq("user_id", userID)
	}

	var rows []model.MemoryRow
	if _, err := filter.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("拉取远端记忆失败: %w", err)
	}
	return rows, nil
}

// UpsertMemory 以 (user_id, date_str) 为冲突键幂等写入
func (s *SupabaseStore) UpsertMemory(ctx context.Context, row model.MemoryRow) error {
	_, _, err := s.client.From("memories").
		Upsert(row, "user_id,date_str", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("远端记忆写入失败: %w", err)
	}
	return nil
}

// FindPartner 返回第一条已接受配对关系中的对方身份。
// 领域假设一个身份至多一段已接受的关系，存在多条时取后端返回的第一条。
func (s *SupabaseStore) FindPartner(ctx context.Context, userID string) (string, error) {
	var shares []model.Share
	_, err := s.client.From("shares").Select("*", "", false).
		Eq("status", model.ShareStatusAccepted).
		Or(fmt.Sprintf("owner_id.eq.%s,partner_id.eq.%s", userID, userID), "").
		ExecuteTo(&shares)
	if err != nil {
		return "", fmt.Errorf("查询配对关系失败: %w", err)
	}

	for _, share := range shares {
		if other := share.CounterpartOf(userID); other != "" {
			return other, nil
		}
	}
	return "", nil
}

// CreateInvite 创建一条待接受的配对邀请
func (s *SupabaseStore) CreateInvite(ctx context.Context, ownerID, partnerEmail string) (*model.Share, error) {
	share := model.Share{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		PartnerEmail: partnerEmail,
		Status:       model.ShareStatusPending,
		InviteToken:  uuid.New().String(),
	}
	_, _, err := s.client.From("shares").
		Insert(share, false, "", "", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("创建配对邀请失败: %w", err)
	}
	return &share, nil
}

// AcceptInvite 凭邀请码把待接受关系置为 accepted 并补上对方身份
func (s *SupabaseStore) AcceptInvite(ctx context.Context, inviteToken, partnerID string) (*model.Share, error) {
	var updated []model.Share
	_, err := s.client.From("shares").
		Update(map[string]interface{}{
			"partner_id": partnerID,
			"status":     model.ShareStatusAccepted,
		}, "representation", "").
		Eq("invite_token", inviteToken).
		Eq("status", model.ShareStatusPending).
		ExecuteTo(&updated)
	if err != nil {
		return nil, fmt.Errorf("接受配对邀请失败: %w", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("邀请码无效或已被使用")
	}
	return &updated[0], nil
}

// Profile 查询身份的展示名；不存在时返回 nil
func (s *SupabaseStore) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	var profiles []model.Profile
	_, err := s.client.From("profiles").Select("*", "", false).
		Eq("id", userID).
		ExecuteTo(&profiles)
	if err != nil {
		return nil, fmt.Errorf("查询用户资料失败: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// UploadMedia 上传媒体到公开桶，返回稳定的公开访问 URL
func (s *SupabaseStore) UploadMedia(ctx context.Context, userID, dateStr string, data []byte, mimeType string) (string, error) {
	path := fmt.Sprintf("%s/%s/%s%s", userID, dateStr, uuid.New().String(), extByMIME(mimeType))

	contentType := mimeType
	_, err := s.client.Storage.UploadFile(s.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("媒体上传失败: %w", err)
	}

	resp := s.client.Storage.GetPublicUrl(s.bucket, path)
	return resp.SignedURL, nil
}

// Letters 拉取与该身份相关的全部信件，按写信时间倒序
func (s *SupabaseStore) Letters(ctx context.Context, userID string) ([]model.Letter, error) {
	var letters []model.Letter
	_, err := s.client.From("letters").Select("*", "", false).
		Or(fmt.Sprintf("from_user_id.eq.%s,to_user_id.eq.%s", userID, userID), "").
		ExecuteTo(&letters)
	if err != nil {
		return nil, fmt.Errorf("拉取信件失败: %w", err)
	}
	sort.Slice(letters, func(i, j int) bool {
		return letters[i].CreatedAt.After(letters[j].CreatedAt)
	})
	return letters, nil
}

// SendLetter 写入一封新信
func (s *SupabaseStore) SendLetter(ctx context.Context, letter model.Letter) error {
	_, _, err := s.client.From("letters").
		Insert(letter, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("寄出信件失败: %w", err)
	}
	return nil
}

// MarkLetterRead 盖上已读时间戳
func (s *SupabaseStore) MarkLetterRead(ctx context.Context, letterID string, at time.Time) error {
	_, _, err := s.client.From("letters").
		Update(map[string]interface{}{"read_at": at.UTC().Format(time.RFC3339)}, "", "").
		Eq("id", letterID).
		Execute()
	if err != nil {
		return fmt.Errorf("标记已读失败: %w", err)
	}
	return nil
}
