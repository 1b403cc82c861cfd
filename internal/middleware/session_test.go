package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/rentafamily/internal/model"
)

// --- モック定義 ---

type mockSessionRepository struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func validSessionRepo(sessionID, userID string) *mockSessionRepository {
	return &mockSessionRepository{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			if id == sessionID {
				return &model.Session{ID: sessionID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
			}
			return nil, nil
		},
	}
}

// --- テスト ---

func TestSessionMiddleware_ValidSession_InjectsUserAndSessionID(t *testing.T) {
	mw := NewSessionMiddleware(validSessionRepo("valid-session-id", "user-123"))

	var capturedUserID, capturedSessionID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		capturedUserID = userID
		capturedSessionID = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session-id"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if capturedUserID != "user-123" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-123")
	}
	if capturedSessionID != "valid-session-id" {
		t.Errorf("sessionID = %q, want %q", capturedSessionID, "valid-session-id")
	}
}

func TestSessionMiddleware_Anonymous_PassesThrough(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: SessionCookieName, Value: ""}},
		{"expired or unknown session", &http.Cookie{Name: SessionCookieName, Value: "expired"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewSessionMiddleware(validSessionRepo("valid", "user-1"))

			called := false
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if _, err := UserIDFromContext(r.Context()); err == nil {
					t.Error("anonymous request should not carry a user ID")
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/public/families", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if !called {
				t.Error("handler should be called")
			}
		})
	}
}

func TestSessionMiddleware_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unavailable", fmt.Errorf("dial: %w", model.ErrStoreUnavailable), http.StatusServiceUnavailable, model.ErrCodeStoreUnavailable},
		{"permission denied", fmt.Errorf("select: %w", model.ErrPermissionDenied), http.StatusForbidden, model.ErrCodePermissionDenied},
		{"unclassified", context.DeadlineExceeded, http.StatusServiceUnavailable, model.ErrCodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewSessionMiddleware(&mockSessionRepository{
				findByIDFn: func(context.Context, string) (*model.Session, error) { return nil, tt.err },
			})
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "some-session"})
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		var body ErrorResponseBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if body.Code != model.ErrCodeAuthRequired {
			t.Errorf("code = %q, want %q", body.Code, model.ErrCodeAuthRequired)
		}
		if body.Message != "Please sign in first." {
			t.Errorf("message = %q", body.Message)
		}
	})

	t.Run("with session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
		}
	})
}

func TestUserIDFromContext_NoValue_ReturnsError(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for missing user ID in context")
	}
}

func TestContextWithSession(t *testing.T) {
	ctx := ContextWithSession(context.Background(), "user-456", "sess-1")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-456" {
		t.Errorf("userID = %q, want %q", userID, "user-456")
	}
	if got := SessionIDFromContext(ctx); got != "sess-1" {
		t.Errorf("sessionID = %q, want %q", got, "sess-1")
	}
	if got := SessionIDFromContext(context.Background()); got != "" {
		t.Errorf("sessionID = %q, want empty", got)
	}
}
