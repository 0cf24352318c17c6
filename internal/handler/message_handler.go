package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/slotbook/internal/frontdesk"
	"github.com/hitoshi/slotbook/internal/report"
)

// MessageServiceInterface はメッセージハンドラーが必要とするサービスインターフェース。
type MessageServiceInterface interface {
	SendMessage(ctx context.Context, in frontdesk.MessageInput) (string, error)
	Inbox(ctx context.Context) ([]report.MessageView, error)
	MarkMessageRead(ctx context.Context, messageID string) error
}

// MessageHandler はメッセージのHTTPハンドラー。
type MessageHandler struct {
	service MessageServiceInterface
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(service MessageServiceInterface) *MessageHandler {
	return &MessageHandler{service: service}
}

type messageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// Send はメッセージを送信する。
// POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.SendMessage(r.Context(), frontdesk.MessageInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// Inbox は受信メッセージを送信日時の昇順で返す。
// GET /api/messages/inbox
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Inbox(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponses(views))
}

// MarkRead はメッセージを既読にする。
// POST /api/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkMessageRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
