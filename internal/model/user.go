package model

import "time"

// ProviderGoogle はGoogleサインインのprovider名。
const ProviderGoogle = "google"

// User はマーケットプレイスの利用者を表す。
// メールアドレスとパスワードで登録した利用者のみPasswordHashを持ち、
// Googleのみで登録した利用者はEmailが空の場合がある。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Providers は紐付いている外部IdPの一覧。GetUserでのみ設定する。
	Providers []string
}

// HasPassword はパスワードでのログインが可能かを返す。
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Identity は利用者と外部IdPアカウントの紐付け。
// (Provider, ProviderUserID) は一意。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はCookieで識別するサーバー側セッション。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ExpiredAt はnow時点でセッションが失効しているかを返す。
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
