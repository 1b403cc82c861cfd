package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgresFamilyRepo はPostgreSQLを使用したファミリーリポジトリ。
type PostgresFamilyRepo struct {
	db *sql.DB
}

// NewPostgresFamilyRepo はPostgresFamilyRepoを生成する。
func NewPostgresFamilyRepo(db *sql.DB) *PostgresFamilyRepo {
	return &PostgresFamilyRepo{db: db}
}

const familyColumns = `owner_id, name, bio, location, is_public, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFamily(row rowScanner) (*model.Family, error) {
	f := &model.Family{}
	if err := row.Scan(&f.OwnerID, &f.Name, &f.Bio, &f.Location, &f.IsPublic, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// FindByOwnerID は所有ユーザーIDでファミリーを取得する。見つからない場合はnilを返す。
func (r *PostgresFamilyRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.Family, error) {
	f, err := scanFamily(r.db.QueryRowContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE owner_id = $1`,
		ownerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("ファミリーの取得に失敗しました", err)
	}
	return f, nil
}

// EnsureExists は非公開かつ空のファミリーを存在しない場合のみ作成する。
func (r *PostgresFamilyRepo) EnsureExists(ctx context.Context, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO families (owner_id, name, bio, location, is_public, created_at, updated_at)
		 VALUES ($1, '', '', '', false, now(), now())
		 ON CONFLICT (owner_id) DO NOTHING`,
		ownerID,
	)
	if err != nil {
		return false, storeError("ファミリーの初期作成に失敗しました", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeError("ファミリーの初期作成結果の取得に失敗しました", err)
	}
	return n == 1, nil
}

// Upsert は部分更新内容をマージし、updated_atを更新した結果を返す。
// nilのフィールドは既存値、新規作成時は空文字列・非公開となる。
func (r *PostgresFamilyRepo) Upsert(ctx context.Context, ownerID string, update model.FamilyUpdate) (*model.Family, error) {
	f, err := scanFamily(r.db.QueryRowContext(ctx,
		`INSERT INTO families (owner_id, name, bio, location, is_public, created_at, updated_at)
		 VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, false), now(), now())
		 ON CONFLICT (owner_id) DO UPDATE SET
		     name       = COALESCE($2, families.name),
		     bio        = COALESCE($3, families.bio),
		     location   = COALESCE($4, families.location),
		     is_public  = COALESCE($5, families.is_public),
		     updated_at = now()
		 RETURNING `+familyColumns,
		ownerID, nullableString(update.Name), nullableString(update.Bio), nullableString(update.Location), nullableBool(update.IsPublic),
	))
	if err != nil {
		return nil, storeError("ファミリーの更新に失敗しました", err)
	}
	return f, nil
}

// ListPublic は公開ファミリーを更新日時の降順で最大limit件返す。
func (r *PostgresFamilyRepo) ListPublic(ctx context.Context, limit int) ([]*model.Family, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+familyColumns+`
		 FROM families
		 WHERE is_public = true
		 ORDER BY updated_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storeError("公開ファミリー一覧の取得に失敗しました", err)
	}
	defer rows.Close()

	var families []*model.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, storeError("公開ファミリーの読み取りに失敗しました", err)
		}
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("公開ファミリー一覧の走査に失敗しました", err)
	}
	return families, nil
}

// nullableString はnilポインタをSQLのNULLに変換する。
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableBool はnilポインタをSQLのNULLに変換する。
func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// compile-time interface check
var _ FamilyRepository = (*PostgresFamilyRepo)(nil)
