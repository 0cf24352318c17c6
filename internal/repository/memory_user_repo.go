package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/hitoshi/slotbook/internal/model"
)

var _ UserRepository = (*MemoryUserRepo)(nil)

// MemoryUserRepo はプロセス内のマップでユーザーを保持するリポジトリ。
// 返却値は常にコピーで、呼び出し側の変更は保存内容に影響しない。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
	order []string
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.findByEmailLocked(email); ok {
		return &u, nil
	}
	return nil, nil
}

// CreateIfEmailFree はメールアドレスが未使用の場合のみユーザーを作成する。
func (r *MemoryUserRepo) CreateIfEmailFree(_ context.Context, user *model.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.findByEmailLocked(user.Email); taken {
		return false, nil
	}
	if _, exists := r.users[user.ID]; !exists {
		r.order = append(r.order, user.ID)
	}
	r.users[user.ID] = *user
	return true, nil
}

// Mutate は指定IDのユーザーに排他区間内でfnを適用して保存する。
func (r *MemoryUserRepo) Mutate(_ context.Context, id string, fn func(u *model.User) error) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	r.users[id] = u
	out := u
	return &out, nil
}

// DeleteByID は指定IDのユーザーを削除する。
func (r *MemoryUserRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

// List は条件に一致するユーザーを登録順で返す。
// 学科は完全一致、担当科目は大文字小文字を区別しない部分一致で絞り込む。
func (r *MemoryUserRepo) List(_ context.Context, filter model.UserFilter) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subject := strings.ToLower(filter.Subject)
	results := make([]*model.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.users[id]
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Department != "" && u.Department != filter.Department {
			continue
		}
		if subject != "" && !strings.Contains(strings.ToLower(u.Subject), subject) {
			continue
		}
		results = append(results, &u)
	}
	return results, nil
}

func (r *MemoryUserRepo) findByEmailLocked(email string) (model.User, bool) {
	for _, id := range r.order {
		if u := r.users[id]; u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}
