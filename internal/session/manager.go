// Package session はログイン中の利用者の管理と役割による操作制限を提供する。
package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/hitoshi/slotbook/internal/model"
)

// Authenticator は資格情報の照合インターフェース。
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string, role model.Role) (*model.User, error)
}

// Manager は同時に1つだけ存在するアクティブセッションを保持する。
// 新しいログインは既存のセッションを置き換える。
type Manager struct {
	auth Authenticator

	mu      sync.RWMutex
	current *model.Session
}

// NewManager はManagerを生成する。
func NewManager(auth Authenticator) *Manager {
	return &Manager{auth: auth}
}

// Login は資格情報を照合し、成功した場合にアクティブセッションを開始する。
// 失敗した場合は既存のセッションを変更しない。
func (m *Manager) Login(ctx context.Context, email, password string, role model.Role) (*model.Session, error) {
	u, err := m.auth.Authenticate(ctx, email, password, role)
	if err != nil {
		return nil, err
	}

	s := &model.Session{
		UserID:    u.ID,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	slog.Info("ログインしました",
		slog.String("user_id", u.ID),
		slog.String("role", string(u.Role)),
	)
	out := *s
	return &out, nil
}

// Logout はアクティブセッションを終了し、終了したセッションを返す。
// ログインしていない場合はnilを返す。
func (m *Manager) Logout() *model.Session {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev != nil {
		slog.Info("ログアウトしました", slog.String("user_id", prev.UserID))
	}
	return prev
}

// Current はアクティブセッションのコピーを返す。
func (m *Manager) Current() (*model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, false
	}
	out := *m.current
	return &out, true
}

// Require はアクティブセッションの役割がrolesのいずれかであることを確認する。
// 未ログインの場合はNotLoggedInError、役割が一致しない場合はForbiddenErrorを返す。
// rolesが空の場合はログインしていれば許可する。
func (m *Manager) Require(operation string, roles ...model.Role) (*model.Session, error) {
	s, ok := m.Current()
	if !ok {
		return nil, model.NewNotLoggedInError()
	}
	if len(roles) > 0 && !slices.Contains(roles, s.Role) {
		return nil, model.NewForbiddenError(operation)
	}
	return s, nil
}

// EndIfUser は指定ユーザーのセッションがアクティブな場合に終了する。
// ユーザー削除時に使う。
func (m *Manager) EndIfUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.UserID == userID {
		m.current = nil
	}
}
