package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// Letters 拉取当前身份可见的信件。
// 定时信在送达时间之前对收件人隐藏，发件人始终可见自己寄出的信。
func (s *JournalService) Letters(ctx context.Context) ([]model.Letter, error) {
	userID, _ := s.identity()
	if s.remote == nil || userID == "" {
		return nil, ErrNoIdentity
	}

	all, err := s.remote.Letters(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	visible := make([]model.Letter, 0, len(all))
	for _, letter := range all {
		if letter.VisibleTo(userID, now) {
			visible = append(visible, letter)
		}
	}
	return visible, nil
}

// SendLetter 给伴侣寄一封信，可选定时送达。
// 过去的定时时间视为立即送达。
func (s *JournalService) SendLetter(ctx context.Context, req *model.SendLetterRequest) (*model.Letter, error) {
	userID, partnerID := s.identity()
	if s.remote == nil || userID == "" {
		return nil, ErrNoIdentity
	}
	if partnerID == "" {
		return nil, ErrNoPartner
	}

	now := time.Now().UTC()
	letter := model.Letter{
		ID:         uuid.New().String(),
		FromUserID: userID,
		ToUserID:   partnerID,
		Body:       req.Body,
		CreatedAt:  now,
	}
	if req.ScheduledAt != nil && req.ScheduledAt.After(now) {
		letter.ScheduledAt = req.ScheduledAt
	}

	if err := s.remote.SendLetter(ctx, letter); err != nil {
		return nil, err
	}
	return &letter, nil
}

// MarkLetterRead 把一封信标记为已读
func (s *JournalService) MarkLetterRead(ctx context.Context, letterID string) error {
	if !s.remoteActive() {
		return ErrNoIdentity
	}
	return s.remote.MarkLetterRead(ctx, letterID, time.Now())
}
