package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/slotbook/internal/model"
)

var _ AvailabilityRepository = (*MemoryAvailabilityRepo)(nil)

// MemoryAvailabilityRepo は講師IDをキーに空き時間を保持するリポジトリ。
type MemoryAvailabilityRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Availability
}

// NewMemoryAvailabilityRepo はMemoryAvailabilityRepoを生成する。
func NewMemoryAvailabilityRepo() *MemoryAvailabilityRepo {
	return &MemoryAvailabilityRepo{byID: make(map[string]model.Availability)}
}

// FindByTeacherID は講師の空き時間のコピーを返す。未登録の場合はnilを返す。
func (r *MemoryAvailabilityRepo) FindByTeacherID(_ context.Context, teacherID string) (model.Availability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[teacherID]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

// Replace は講師の空き時間を丸ごと置き換える。
func (r *MemoryAvailabilityRepo) Replace(_ context.Context, teacherID string, availability model.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[teacherID] = availability.Clone()
	return nil
}
