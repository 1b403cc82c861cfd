// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ストア層の失敗を分類するセンチネルエラー。
// リポジトリはドライバのエラーとともにこれらをラップして返す。
var (
	// ErrStoreUnavailable は接続断や想定外の失敗でストアが応答できないことを表す。
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrPermissionDenied はストアが権限不足で操作を拒否したことを表す。
	ErrPermissionDenied = errors.New("permission denied")
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, family, opportunity, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeAuthRequired        = "AUTH_REQUIRED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeOwnOpportunity      = "OWN_OPPORTUNITY"
	ErrCodeFamilyNotFound      = "FAMILY_NOT_FOUND"
	ErrCodeProfileNotPublic    = "PROFILE_NOT_PUBLIC"
	ErrCodeOpportunityNotFound = "OPPORTUNITY_NOT_FOUND"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeNotAJob             = "NOT_A_JOB"
	ErrCodeNotAnEvent          = "NOT_AN_EVENT"
	ErrCodeEventFull           = "EVENT_FULL"
	ErrCodeDuplicateRSVP       = "DUPLICATE_RSVP"
	ErrCodePermissionDenied    = "PERMISSION_DENIED"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeOAuthDisabled       = "OAUTH_DISABLED"
	ErrCodeOAuthFailed         = "OAUTH_FAILED"
	ErrCodeCSRFInvalid         = "CSRF_INVALID"
	ErrCodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Check the highlighted fields and try again.",
	}
}

// NewAuthRequiredError は未ログイン時のエラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "Please sign in first.",
		Category: "auth",
		Action:   "Sign in and try again.",
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワードの不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password.",
		Category: "auth",
		Action:   "Check your email and password.",
	}
}

// NewEmailTakenError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "An account with this email already exists.",
		Category: "auth",
		Action:   "Log in instead, or use a different email.",
	}
}

// NewForbiddenError は所有者以外による操作のエラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  message,
		Category: "opportunity",
		Action:   "Only the family that posted this opportunity can do that.",
	}
}

// NewOwnOpportunityError は自分の募集への予約・参加申込のエラーを生成する。
func NewOwnOpportunityError(kind OpportunityKind) *APIError {
	msg := "You cannot reserve your own opportunity."
	if kind == OpportunityKindEvent {
		msg = "You cannot RSVP to your own event."
	}
	return &APIError{
		Code:     ErrCodeOwnOpportunity,
		Message:  msg,
		Category: "opportunity",
		Action:   "Choose an opportunity posted by another family.",
	}
}

// NewFamilyNotFoundError はファミリー未検出エラーを生成する。
func NewFamilyNotFoundError(ownerID string) *APIError {
	return &APIError{
		Code:     ErrCodeFamilyNotFound,
		Message:  fmt.Sprintf("Family not found: %s", ownerID),
		Category: "family",
		Action:   "Check the family link.",
	}
}

// NewProfileNotPublicError は非公開プロフィールへのアクセスエラーを生成する。
func NewProfileNotPublicError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotPublic,
		Message:  "Profile is not public.",
		Category: "family",
		Action:   "Browse the directory for public families.",
	}
}

// NewOpportunityNotFoundError は募集未検出エラーを生成する。
func NewOpportunityNotFoundError(opportunityID string) *APIError {
	return &APIError{
		Code:     ErrCodeOpportunityNotFound,
		Message:  fmt.Sprintf("Opportunity not found: %s", opportunityID),
		Category: "opportunity",
		Action:   "Refresh the list of opportunities.",
	}
}

// NewInvalidTransitionError はライフサイクル上許されない状態遷移のエラーを生成する。
func NewInvalidTransitionError(from, to OpportunityStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("Opportunity cannot move from %s to %s.", from, to),
		Category: "opportunity",
		Action:   "Refresh the list of opportunities.",
	}
}

// NewOpportunityNotOpenError は受付を終了した募集への操作のエラーを生成する。
func NewOpportunityNotOpenError(status OpportunityStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("This opportunity is %s and no longer open.", status),
		Category: "opportunity",
		Action:   "Refresh the list of opportunities.",
	}
}

// NewNotAJobError はイベントに対する予約のエラーを生成する。
func NewNotAJobError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAJob,
		Message:  "Only jobs can be reserved.",
		Category: "opportunity",
		Action:   "RSVP to events instead.",
	}
}

// NewNotAnEventError はジョブに対する参加申込のエラーを生成する。
func NewNotAnEventError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAnEvent,
		Message:  "Only events accept RSVPs.",
		Category: "opportunity",
		Action:   "Reserve jobs instead.",
	}
}

// NewEventFullError は定員到達エラーを生成する。
func NewEventFullError() *APIError {
	return &APIError{
		Code:     ErrCodeEventFull,
		Message:  "This event is full.",
		Category: "opportunity",
		Action:   "Look for another event.",
	}
}

// NewDuplicateRSVPError は同一参加者による重複申込のエラーを生成する。
func NewDuplicateRSVPError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateRSVP,
		Message:  "You have already RSVP'd to this event.",
		Category: "opportunity",
		Action:   "No further action is needed.",
	}
}

// NewPermissionDeniedError はストアによる権限拒否エラーを生成する。
func NewPermissionDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  "The request was rejected by the data store.",
		Category: "system",
		Action:   "Sign in again. Contact support if the problem persists.",
	}
}

// NewStoreUnavailableError はストア到達不能エラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "The data store is temporarily unavailable.",
		Category: "system",
		Action:   "Please try again in a moment.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Sign in again.",
	}
}

// NewOAuthDisabledError はGoogleサインインが未設定の場合のエラーを生成する。
func NewOAuthDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthDisabled,
		Message:  "Google sign-in is not available.",
		Category: "auth",
		Action:   "Sign in with your email and password.",
	}
}

// NewOAuthFailedError はIdPが認可コードを受け付けなかった場合のエラーを生成する。
func NewOAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthFailed,
		Message:  "Google sign-in could not be completed.",
		Category: "auth",
		Action:   "Start the Google sign-in again.",
	}
}

// NewCSRFInvalidError はCSRFトークン検証に失敗した場合のエラーを生成する。
func NewCSRFInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "The request could not be verified.",
		Category: "auth",
		Action:   "Reload the page and try again.",
	}
}

// NewRateLimitedError はレート制限超過時のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Wait a moment before retrying.",
	}
}

// NewInternalError は想定外の失敗に対する汎用エラーを生成する。
// 詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Something went wrong.",
		Category: "system",
		Action:   "Please try again in a moment.",
	}
}
