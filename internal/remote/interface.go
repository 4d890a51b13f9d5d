// Package remote 定义可选的远端存储协作方。
// 建立身份后远端为事实源，本地存储退化为缓存；未建立身份时整个包不参与。
package remote

import (
	"context"
	"time"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// Store 远端行存储 + 媒体桶的最小接口
type Store interface {
	// FetchVisibleMemories 拉取该身份可见的全部记忆行（本人 + 已配对伴侣）
	FetchVisibleMemories(ctx context.Context, userID string) ([]model.MemoryRow, error)
	// UpsertMemory 按 (user_id, date_str) 幂等写入一行
	UpsertMemory(ctx context.Context, row model.MemoryRow) error

	// FindPartner 查找已接受配对关系中的另一方；无配对时返回空串
	FindPartner(ctx context.Context, userID string) (string, error)
	CreateInvite(ctx context.Context, ownerID, partnerEmail string) (*model.Share, error)
	AcceptInvite(ctx context.Context, inviteToken, partnerID string) (*model.Share, error)
	Profile(ctx context.Context, userID string) (*model.Profile, error)

	// UploadMedia 上传一段二进制媒体，返回可回取的稳定 URL
	UploadMedia(ctx context.Context, userID, dateStr string, data []byte, mimeType string) (string, error)

	Letters(ctx context.Context, userID string) ([]model.Letter, error)
	SendLetter(ctx context.Context, letter model.Letter) error
	MarkLetterRead(ctx context.Context, letterID string, at time.Time) error
}
