package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/slotbook/internal/model"
)

var _ MessageRepository = (*MemoryMessageRepo)(nil)

// MemoryMessageRepo はプロセス内でメッセージを保持するリポジトリ。
type MemoryMessageRepo struct {
	mu       sync.RWMutex
	messages []model.Message
}

// NewMemoryMessageRepo はMemoryMessageRepoを生成する。
func NewMemoryMessageRepo() *MemoryMessageRepo {
	return &MemoryMessageRepo{}
}

// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
func (r *MemoryMessageRepo) FindByID(_ context.Context, id string) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

// Create はメッセージを末尾に追加する。
func (r *MemoryMessageRepo) Create(_ context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, *message)
	return nil
}

// ListByReceiverID は受信者宛てのメッセージを送信日時の昇順で返す。
func (r *MemoryMessageRepo) ListByReceiverID(_ context.Context, receiverID string) ([]*model.Message, error) {
	r.mu.RLock()
	results := make([]*model.Message, 0)
	for _, m := range r.messages {
		if m.ReceiverID == receiverID {
			results = append(results, &m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})
	return results, nil
}

// MarkRead はメッセージを既読にする。
func (r *MemoryMessageRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}
