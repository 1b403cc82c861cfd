package model

import "time"

// OpportunityKind は募集の種類を表す。
type OpportunityKind string

const (
	// OpportunityKindJob は1名が予約して引き受けるジョブ。
	OpportunityKindJob OpportunityKind = "job"
	// OpportunityKindEvent は定員まで参加申込を受け付けるイベント。
	OpportunityKindEvent OpportunityKind = "event"
)

// Valid は既知の種類であるかを返す。
func (k OpportunityKind) Valid() bool {
	return k == OpportunityKindJob || k == OpportunityKindEvent
}

// OpportunityStatus は募集のライフサイクル状態を表す。
type OpportunityStatus string

const (
	// OpportunityStatusOpen は受付中。
	OpportunityStatusOpen OpportunityStatus = "open"
	// OpportunityStatusAccepted はジョブが予約済み。
	OpportunityStatusAccepted OpportunityStatus = "accepted"
	// OpportunityStatusClosed は終了。以降の遷移はない。
	OpportunityStatusClosed OpportunityStatus = "closed"
)

// CanTransitionTo は kind の募集が s から next へ遷移できるかを返す。
// closed から closed への遷移は冪等な操作として許可する。
func (s OpportunityStatus) CanTransitionTo(kind OpportunityKind, next OpportunityStatus) bool {
	switch next {
	case OpportunityStatusAccepted:
		return kind == OpportunityKindJob && s == OpportunityStatusOpen
	case OpportunityStatusClosed:
		return s == OpportunityStatusOpen || s == OpportunityStatusAccepted || s == OpportunityStatusClosed
	default:
		return false
	}
}

// DefaultFamilyName はファミリー名が未設定の場合に募集へ表示する名前。
const DefaultFamilyName = "Family"

// Opportunity はFamilyが掲載するジョブまたはイベントの募集を表す。
type Opportunity struct {
	ID          string
	OwnerID     string
	FamilyName  string
	Title       string
	Category    string
	Description string
	Location    string
	Schedule    string
	Rate        string
	Kind        OpportunityKind
	Capacity    int
	Status      OpportunityStatus
	AcceptedBy  string // 予約したユーザーID。未予約の場合は空文字列
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OpportunityWithCount は募集と現在の参加申込数を結合した構造体。
type OpportunityWithCount struct {
	Opportunity
	RSVPCount int
}

// RSVP はイベントへの参加申込を表す。
type RSVP struct {
	ID            string
	OpportunityID string
	AttendeeID    string
	CreatedAt     time.Time
}
