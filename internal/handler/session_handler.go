package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/slotbook/internal/frontdesk"
	"github.com/hitoshi/slotbook/internal/model"
)

// SessionServiceInterface はセッションハンドラーが必要とするサービスインターフェース。
type SessionServiceInterface interface {
	Login(ctx context.Context, in frontdesk.LoginInput) (*model.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
	RegisterStudent(ctx context.Context, in frontdesk.RegisterInput) (string, error)
}

// SessionHandler はログイン・ログアウト・自己登録のHTTPハンドラー。
type SessionHandler struct {
	service SessionServiceInterface
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(service SessionServiceInterface) *SessionHandler {
	return &SessionHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// Login はアクティブセッションを開始する。
// POST /api/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := h.service.Login(r.Context(), frontdesk.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:    s.UserID,
		Role:      string(s.Role),
		Name:      s.Name,
		Email:     s.Email,
		StartedAt: s.StartedAt,
	})
}

// Logout はアクティブセッションを終了する。
// POST /api/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me はログイン中の利用者を返す。
// GET /api/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Register は学生を承認待ちで登録する。
// POST /api/students/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.RegisterStudent(r.Context(), frontdesk.RegisterInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}
