// Package auth はメールアドレス/パスワード認証、OAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/rentafamily/internal/metrics"
	"github.com/hitoshi/rentafamily/internal/model"
	"github.com/hitoshi/rentafamily/internal/repository"
	"github.com/hitoshi/rentafamily/internal/validation"
)

// providerPassword はメールアドレスとパスワードによる認証をログとメトリクスで表す名前。
const providerPassword = "password"

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Provider       string // model.ProviderGoogle 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
	BcryptCost    int // 0の場合はbcrypt.DefaultCost
	Metrics       metrics.MetricsCollector
}

// SignUpInput はアカウント作成の入力。
type SignUpInput struct {
	Name            string `validate:"required,min=3"`
	Email           string `validate:"required,min=6,email"`
	Password        string `validate:"required,min=6,max=72"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// LoginInput はメールアドレスとパスワードによるログインの入力。
type LoginInput struct {
	Email    string `validate:"required,min=6"`
	Password string `validate:"required,min=6"`
}

var (
	signUpMessages = validation.Messages{
		"ConfirmPassword.eqfield": "Passwords must match.",
		"Email.email":             "Enter a valid email address.",
		"*":                       "Enter full name, email, and a 6+ character password.",
	}
	loginMessages = validation.Messages{
		"*": "Invalid login data.",
	}
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
// oauthがnilの場合はOAuthログインを無効とする。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.Metrics == nil {
		config.Metrics = metrics.Nop{}
	}
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// OAuthEnabled はOAuthログインが利用可能かを返す。
func (s *Service) OAuthEnabled() bool {
	return s.oauth != nil
}

// GetLoginURL はOAuth認証URLを生成する。OAuthが無効の場合は空文字列を返す。
func (s *Service) GetLoginURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.GetLoginURL(state)
}

// SignUp はメールアドレスとパスワードでアカウントを作成し、表示名を設定してセッションを発行する。
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*model.Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if apiErr := validation.Struct(in, signUpMessages); apiErr != nil {
		return nil, apiErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.CreateWithPassword(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.config.Metrics.RecordSignup(providerPassword)
	slog.Info("new user signed up", slog.String("user_id", user.ID))

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Login はメールアドレスとパスワードを検証してセッションを発行する。
func (s *Service) Login(ctx context.Context, in LoginInput) (*model.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if apiErr := validation.Struct(in, loginMessages); apiErr != nil {
		return nil, apiErr
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.HasPassword() {
		return nil, model.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID), slog.String("provider", providerPassword))
	return session, nil
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if s.oauth == nil {
		return nil, fmt.Errorf("oauth login is not configured")
	}

	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		// 認可コードの失効や拒否はクライアント側の失敗として扱う
		slog.Warn("oauth code exchange failed", slog.String("error", err.Error()))
		return nil, model.NewOAuthFailedError()
	}

	userID, err := s.resolveFederatedUser(ctx, userInfo)
	if err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// resolveFederatedUser はIdPの利用者に対応するユーザーIDを返す。
// 初回サインインであればユーザーとidentityを同一トランザクションで作成する。
func (s *Service) resolveFederatedUser(ctx context.Context, info *OAuthUserInfo) (string, error) {
	identity, err := s.identRepo.FindByProviderSubject(ctx, info.Provider, info.ProviderUserID)
	if err != nil {
		return "", fmt.Errorf("failed to find identity: %w", err)
	}
	if identity != nil {
		slog.Info("user logged in",
			slog.String("user_id", identity.UserID),
			slog.String("provider", info.Provider),
		)
		return identity.UserID, nil
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     info.Email,
		Name:      info.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	link := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		Provider:       info.Provider,
		ProviderUserID: info.ProviderUserID,
		CreatedAt:      now,
	}
	if err := s.userRepo.CreateWithIdentity(ctx, user, link); err != nil {
		return "", fmt.Errorf("failed to create user and identity: %w", err)
	}

	s.config.Metrics.RecordSignup(info.Provider)
	slog.Info("new user signed up",
		slog.String("user_id", user.ID),
		slog.String("provider", info.Provider),
	)
	return user.ID, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// GetUser はユーザーIDからユーザーを取得し、紐付くproviderを設定する。
func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	providers, err := s.identRepo.ListProviders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	user.Providers = providers
	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
