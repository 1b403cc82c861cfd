package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/rentafamily/internal/auth"
	"github.com/hitoshi/rentafamily/internal/middleware"
	"github.com/hitoshi/rentafamily/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	oauthEnabled     bool
	getLoginURLFn    func(state string) string
	signUpFn         func(ctx context.Context, in auth.SignUpInput) (*model.Session, error)
	loginFn          func(ctx context.Context, in auth.LoginInput) (*model.Session, error)
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getUserFn        func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) OAuthEnabled() bool {
	return m.oauthEnabled
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) SignUp(ctx context.Context, in auth.SignUpInput) (*model.Session, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, in auth.LoginInput) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

var testAuthConfig = AuthHandlerConfig{
	BaseURL:       "http://localhost:3000",
	SessionMaxAge: 86400,
}

func newTestSession(userID string) *model.Session {
	return &model.Session{
		ID:        "session-abc",
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

// --- POST /auth/signup ---

func TestAuthHandler_SignUp_SetsSessionCookie(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) (*model.Session, error) {
			if in.Name != "Ana Martinez" || in.Email != "ana@example.com" {
				t.Errorf("unexpected input: %+v", in)
			}
			if in.ConfirmPassword != "secret1" {
				t.Errorf("ConfirmPassword = %q, want secret1", in.ConfirmPassword)
			}
			return newTestSession("user-1"), nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	body := `{"name":"Ana Martinez","email":"ana@example.com","password":"secret1","confirm_password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	cookie := findCookie(w, middleware.SessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Value != "session-abc" || !cookie.HttpOnly || cookie.MaxAge != 86400 {
		t.Errorf("unexpected session cookie: %+v", cookie)
	}

	var resp sessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Errorf("user_id = %q, want user-1", resp.UserID)
	}
}

func TestAuthHandler_SignUp_ValidationError(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) (*model.Session, error) {
			return nil, model.NewValidationError("Passwords must match.")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"name":"Ana"}`))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if findCookie(w, middleware.SessionCookieName) != nil {
		t.Error("session cookie must not be set on failure")
	}
	if body := parseAPIErrorResponse(t, w); body["message"] != "Passwords must match." {
		t.Errorf("message = %q", body["message"])
	}
}

func TestAuthHandler_SignUp_EmailTaken(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) (*model.Session, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestAuthHandler_SignUp_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{broken`))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeValidation)
	}
}

// --- POST /auth/login ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, in auth.LoginInput) (*model.Session, error) {
			return newTestSession("user-2"), nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"b@example.com","password":"secret1"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if findCookie(w, middleware.SessionCookieName) == nil {
		t.Error("expected session cookie")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, in auth.LoginInput) (*model.Session, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"b@example.com","password":"wrong!"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- GET /auth/google/login, /auth/google/callback ---

func TestAuthHandler_GoogleLogin_RedirectsWithStateCookie(t *testing.T) {
	svc := &mockAuthService{
		oauthEnabled: true,
		getLoginURLFn: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	w := httptest.NewRecorder()
	h.GoogleLogin(w, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	state := findCookie(w, oauthStateCookie)
	if state == nil || state.Value == "" {
		t.Fatal("expected oauth_state cookie")
	}
	if loc := w.Header().Get("Location"); !strings.HasSuffix(loc, "state="+state.Value) {
		t.Errorf("Location = %q does not carry state %q", loc, state.Value)
	}
}

func TestAuthHandler_GoogleLogin_Disabled(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	w := httptest.NewRecorder()
	h.GoogleLogin(w, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != "OAUTH_DISABLED" {
		t.Errorf("code = %q, want OAUTH_DISABLED", body["code"])
	}
}

func TestAuthHandler_GoogleCallback_StateMismatch(t *testing.T) {
	called := false
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			called = true
			return nil, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "expected"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("HandleCallback must not be called on state mismatch")
	}
}

func TestAuthHandler_GoogleCallback_Success(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want auth-code", code)
			}
			return newTestSession("user-3"), nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	if loc := w.Header().Get("Location"); loc != "http://localhost:3000" {
		t.Errorf("Location = %q", loc)
	}
	if c := findCookie(w, middleware.SessionCookieName); c == nil || c.Value != "session-abc" {
		t.Errorf("unexpected session cookie: %+v", c)
	}
	if c := findCookie(w, oauthStateCookie); c == nil || c.MaxAge != -1 {
		t.Errorf("oauth_state cookie should be cleared: %+v", c)
	}
}

func TestAuthHandler_GoogleCallback_RejectedCodeIsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			return nil, model.NewOAuthFailedError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=expired&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["code"] != model.ErrCodeOAuthFailed {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeOAuthFailed)
	}
	if c := findCookie(w, middleware.SessionCookieName); c != nil {
		t.Errorf("session cookie must not be set: %+v", c)
	}
}

// --- POST /auth/logout ---

func TestAuthHandler_Logout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deleted string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(middleware.ContextWithSession(req.Context(), "user-1", "session-xyz"))
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if deleted != "session-xyz" {
		t.Errorf("deleted session = %q, want session-xyz", deleted)
	}
	if c := findCookie(w, middleware.SessionCookieName); c == nil || c.MaxAge != -1 {
		t.Errorf("session cookie should be cleared: %+v", c)
	}
}

func TestAuthHandler_Logout_StoreFailureStillClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			return model.ErrStoreUnavailable
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "stale"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if c := findCookie(w, middleware.SessionCookieName); c == nil || c.MaxAge != -1 {
		t.Errorf("session cookie should be cleared: %+v", c)
	}
}

// --- GET /api/me ---

func TestAuthHandler_Me_RequiresSession(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeAuthRequired {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeAuthRequired)
	}
}

func TestAuthHandler_Me_ReturnsUser(t *testing.T) {
	svc := &mockAuthService{
		getUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{
				ID: userID, Email: "ana@example.com", Name: "Ana",
				PasswordHash: "$2a$hash", Providers: []string{model.ProviderGoogle},
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	w := httptest.NewRecorder()
	h.Me(w, withUserID(httptest.NewRequest(http.MethodGet, "/api/me", nil), "user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "user-1" || resp.Email != "ana@example.com" || resp.Name != "Ana" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if !resp.HasPassword {
		t.Error("has_password = false, want true")
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != model.ProviderGoogle {
		t.Errorf("providers = %v, want [google]", resp.Providers)
	}
}

func TestAuthHandler_Me_EmptyProvidersIsArray(t *testing.T) {
	svc := &mockAuthService{
		getUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Name: "Ana"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	w := httptest.NewRecorder()
	h.Me(w, withUserID(httptest.NewRequest(http.MethodGet, "/api/me", nil), "user-1"))

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if providers, ok := raw["providers"].([]any); !ok || len(providers) != 0 {
		t.Errorf("providers = %v, want []", raw["providers"])
	}
	if raw["has_password"] != false {
		t.Errorf("has_password = %v, want false", raw["has_password"])
	}
}
