// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/rentafamily/internal/model"
)

// 条件付き書き込みが成立しなかった理由を表すエラー。
// いずれもストア障害ではなく、呼び出し側がドメインエラーに変換する。
var (
	// ErrNotFound は対象レコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約に違反したことを表す。
	ErrDuplicate = errors.New("duplicate record")
	// ErrCapacityReached はイベントの参加申込数が定員に達していることを表す。
	ErrCapacityReached = errors.New("capacity reached")
	// ErrStateChanged は書き込み時点で募集の種類または状態が前提を満たさないことを表す。
	ErrStateChanged = errors.New("opportunity state changed")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// CreateWithPassword はパスワードハッシュを持つユーザーを作成する。
	// メールアドレスが登録済みの場合はErrDuplicateを返す。
	CreateWithPassword(ctx context.Context, user *model.User) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderSubject はproviderとIdP上の利用者IDで紐付けを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderSubject(ctx context.Context, provider, subject string) (*model.Identity, error)
	// ListProviders は利用者に紐付くprovider名の一覧を返す。
	ListProviders(ctx context.Context, userID string) ([]string, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired はbefore時点で期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// FamilyRepository はファミリーの永続化インターフェース。
type FamilyRepository interface {
	// FindByOwnerID は所有ユーザーIDでファミリーを取得する。見つからない場合はnilを返す。
	FindByOwnerID(ctx context.Context, ownerID string) (*model.Family, error)

	// EnsureExists は非公開かつ空のファミリーを存在しない場合のみ作成する。
	// 既存レコードは変更しない。作成した場合はtrueを返す。
	EnsureExists(ctx context.Context, ownerID string) (bool, error)

	// Upsert は部分更新内容をマージし、updated_atを更新した結果を返す。
	// レコードが存在しない場合は作成する。
	Upsert(ctx context.Context, ownerID string, update model.FamilyUpdate) (*model.Family, error)

	// ListPublic は公開ファミリーを更新日時の降順で最大limit件返す。
	ListPublic(ctx context.Context, limit int) ([]*model.Family, error)
}

// MemberRepository はファミリーメンバーの永続化インターフェース。
type MemberRepository interface {
	// ListByOwner はファミリーの全メンバーを作成日時の昇順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Member, error)

	// Create はメンバーを追加する。
	Create(ctx context.Context, member *model.Member) error

	// ListPublic は全ファミリーを横断して公開メンバーを新しい順に最大limit件返す。
	// 公開フラグでの絞り込みはLIMITより先に適用する。
	ListPublic(ctx context.Context, limit int) ([]*model.Member, error)
}

// OpportunityRepository は募集の永続化インターフェース。
type OpportunityRepository interface {
	// FindByID は所有ユーザーIDと募集IDで募集を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, ownerID, opportunityID string) (*model.Opportunity, error)

	// Create は募集を作成する。statusは常にopenで保存する。
	Create(ctx context.Context, opportunity *model.Opportunity) error

	// ListByOwner はファミリーの全募集を参加申込数付きで新しい順に返す。
	ListByOwner(ctx context.Context, ownerID string) ([]model.OpportunityWithCount, error)

	// ListAll は全ファミリーの募集を参加申込数付きで新しい順に最大limit件返す。
	ListAll(ctx context.Context, limit int) ([]model.OpportunityWithCount, error)

	// Accept はstatusがopenのジョブに限りacceptedへ更新し、予約者を記録する。
	// 条件を満たす行がなかった場合はfalseを返す。
	Accept(ctx context.Context, ownerID, opportunityID, acceptorID string) (bool, error)

	// Close はstatusをclosedに更新する。対象が存在しない場合はfalseを返す。
	Close(ctx context.Context, ownerID, opportunityID string) (bool, error)
}

// RSVPRepository はイベント参加申込の永続化インターフェース。
type RSVPRepository interface {
	// Add は募集行をロックした上で種類・状態・定員・重複を検証し、参加申込を追加する。
	// 募集が存在しない場合はErrNotFound、openのイベントでない場合はErrStateChanged、
	// 定員到達時はErrCapacityReached、同一参加者の重複時はErrDuplicateを返す。
	Add(ctx context.Context, ownerID, opportunityID, attendeeID string) (*model.RSVP, error)

	// Count は募集の参加申込数を返す。
	Count(ctx context.Context, ownerID, opportunityID string) (int, error)
}
