package model

import "time"

// Family はサービスを提供する世帯のプロフィールを表す。
// OwnerIDは所有ユーザーのIDで、1ユーザーにつき1件のみ存在する。
type Family struct {
	OwnerID   string
	Name      string
	Bio       string
	Location  string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FamilyUpdate はFamilyの部分更新内容を表す。
// nilのフィールドは既存の値を維持する。
type FamilyUpdate struct {
	Name     *string
	Bio      *string
	Location *string
	IsPublic *bool
}

// Member はFamilyに所属するメンバーを表す。
// 年齢は自由記述のため文字列で保持する。
type Member struct {
	ID        string
	OwnerID   string
	Name      string
	Role      string
	Age       string
	Bio       string
	IsPublic  bool
	CreatedAt time.Time
}
