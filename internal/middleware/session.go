// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/rentafamily/internal/model"
)

// SessionCookieName はセッションIDを保持するCookie名。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
	userIDContextKey = contextKey("user_id")
	// sessionIDContextKey はリクエストコンテキストにセッションIDを格納するためのキー。
	sessionIDContextKey = contextKey("session_id")
)

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 有効なセッションであればユーザーIDとセッションIDをリクエストコンテキストに注入する。
// 未認証のリクエストもそのまま次へ渡す。認証必須のルートにはRequireAuthを併用する。
// ストアに到達できない場合は503を返す。
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				if errors.Is(err, model.ErrPermissionDenied) {
					WriteErrorResponse(w, http.StatusForbidden, model.NewPermissionDeniedError())
					return
				}
				WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			ctx = context.WithValue(ctx, sessionIDContextKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth はセッションのないリクエストを401 AUTH_REQUIREDで拒否する。
// NewSessionMiddlewareの後段に置く。
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := UserIDFromContext(r.Context()); err != nil {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 有効なセッションを持つリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// SessionIDFromContext はリクエストコンテキストからセッションIDを取得する。
// セッションがない場合は空文字列を返す。
func SessionIDFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDContextKey).(string)
	return sessionID
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithSession はコンテキストにユーザーIDとセッションIDを注入する。
func ContextWithSession(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}
