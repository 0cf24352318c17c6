// Package messaging は利用者間の単方向メッセージのドメインロジックを提供する。
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
	"github.com/hitoshi/slotbook/internal/security"
)

// Service はメッセージのサービス層。
type Service struct {
	repo      repository.MessageRepository
	sanitizer security.TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.MessageRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Send は未読状態のメッセージを作成し、メッセージIDを返す。
// 本文はHTMLタグを除去して保存する。"<b>"のようなタグに見える文字列も除去されるため、
// 保存される本文は入力と一致しない場合がある。除去後に空になった場合はValidationErrorを返す。
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string) (string, error) {
	body := s.sanitizer.Sanitize(content)
	if body == "" {
		return "", model.NewValidationError("content")
	}

	m := &model.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    body,
		Timestamp:  time.Now(),
		Read:       false,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return "", fmt.Errorf("メッセージの保存に失敗しました: %w", err)
	}

	slog.Info("メッセージを送信しました",
		slog.String("message_id", m.ID),
		slog.String("sender_id", senderID),
		slog.String("receiver_id", receiverID),
	)
	return m.ID, nil
}

// Inbox は利用者宛てのメッセージを送信日時の昇順で返す。既読・未読を問わず全件返す。
func (s *Service) Inbox(ctx context.Context, userID string) ([]*model.Message, error) {
	list, err := s.repo.ListByReceiverID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("受信箱の取得に失敗しました: %w", err)
	}
	return list, nil
}

// MarkRead はメッセージを既読にする。受信者本人以外はForbiddenErrorを返す。
func (s *Service) MarkRead(ctx context.Context, userID, messageID string) error {
	m, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("メッセージの取得に失敗しました: %w", err)
	}
	if m == nil {
		return model.NewMessageNotFoundError(messageID)
	}
	if m.ReceiverID != userID {
		return model.NewForbiddenError("メッセージの既読化")
	}

	err = s.repo.MarkRead(ctx, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewMessageNotFoundError(messageID)
	}
	if err != nil {
		return fmt.Errorf("メッセージの既読化に失敗しました: %w", err)
	}
	return nil
}
