package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgresSessionRepo はログインセッションをsessionsテーブルで管理する。
type PostgresSessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db, now: time.Now}
}

// Create はセッションを保存する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	); err != nil {
		return storeError("failed to create session", err)
	}
	return nil
}

// FindByID はセッションを取得する。存在しないか失効済みの場合はnilを返す。
// 失効済みの行はワーカーのDeleteExpiredが後で消す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, storeError("failed to find session", err)
	}

	if s.ExpiredAt(r.now()) {
		return nil, nil
	}
	return &s, nil
}

// DeleteByID はセッションを削除する。存在しなくてもエラーにしない。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return storeError("failed to delete session", err)
	}
	return nil
}

// DeleteExpired はbefore以前に失効したセッションを一括削除し、件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, storeError("failed to purge expired sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("failed to count purged sessions", err)
	}
	return n, nil
}

var _ SessionRepository = (*PostgresSessionRepo)(nil)
