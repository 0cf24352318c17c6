// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/slotbook/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userIDContextKey      = contextKey("user_id")
	roleContextKey        = contextKey("role")
	requestInfoContextKey = contextKey("request_info")
)

// requestInfo はロギングミドルウェアが内側のミドルウェアから情報を受け取るための入れ物。
type requestInfo struct {
	userID string
	role   model.Role
}

// SessionSource はアクティブセッションの参照元。
type SessionSource interface {
	Current() (*model.Session, bool)
}

// NewSessionGate はアクティブセッションが存在するリクエストのみを通すミドルウェアを返す。
// セッションのユーザーIDと役割をリクエストコンテキストに注入する。
// セッションがない場合は401とNOT_LOGGED_INを返す。
func NewSessionGate(source SessionSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := source.Current()
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewNotLoggedInError())
				return
			}

			ctx := ContextWithUserID(r.Context(), s.UserID)
			ctx = ContextWithRole(ctx, s.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションゲートを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// RoleFromContext はリクエストコンテキストから役割を取得する。
func RoleFromContext(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(roleContextKey).(model.Role)
	return role, ok
}

// ContextWithRole はコンテキストに役割を注入する。
func ContextWithRole(ctx context.Context, role model.Role) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.role = role
	}
	return context.WithValue(ctx, roleContextKey, role)
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// ロギングミドルウェアの内側であれば、ログにもユーザーIDが出力される。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}
