package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgresMemberRepo はPostgreSQLを使用したメンバーリポジトリ。
type PostgresMemberRepo struct {
	db *sql.DB
}

// NewPostgresMemberRepo はPostgresMemberRepoを生成する。
func NewPostgresMemberRepo(db *sql.DB) *PostgresMemberRepo {
	return &PostgresMemberRepo{db: db}
}

const memberColumns = `id, owner_id, name, role, age, bio, is_public, created_at`

// ListByOwner はファミリーの全メンバーを作成日時の昇順で返す。
func (r *PostgresMemberRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+`
		 FROM members
		 WHERE owner_id = $1
		 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, storeError("メンバー一覧の取得に失敗しました", err)
	}
	return collectMembers(rows)
}

// Create はメンバーを追加する。
func (r *PostgresMemberRepo) Create(ctx context.Context, member *model.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, owner_id, name, role, age, bio, is_public, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		member.ID, member.OwnerID, member.Name, member.Role, member.Age, member.Bio, member.IsPublic, member.CreatedAt,
	)
	if err != nil {
		return storeError("メンバーの追加に失敗しました", err)
	}
	return nil
}

// ListPublic は全ファミリーを横断して公開メンバーを新しい順に最大limit件返す。
func (r *PostgresMemberRepo) ListPublic(ctx context.Context, limit int) ([]*model.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+`
		 FROM members
		 WHERE is_public = true
		 ORDER BY created_at DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storeError("公開メンバー一覧の取得に失敗しました", err)
	}
	return collectMembers(rows)
}

func collectMembers(rows *sql.Rows) ([]*model.Member, error) {
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		m := &model.Member{}
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Role, &m.Age, &m.Bio, &m.IsPublic, &m.CreatedAt); err != nil {
			return nil, storeError("メンバーの読み取りに失敗しました", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("メンバー一覧の走査に失敗しました", err)
	}
	return members, nil
}

// compile-time interface check
var _ MemberRepository = (*PostgresMemberRepo)(nil)
