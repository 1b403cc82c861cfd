package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgresIdentityRepo は外部IdPとの紐付けをidentitiesテーブルで管理する。
// 作成はPostgresUserRepo.CreateWithIdentityがユーザーと同一トランザクションで行う。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindByProviderSubject はIdP上の利用者IDから紐付けを引く。未登録ならnilを返す。
func (r *PostgresIdentityRepo) FindByProviderSubject(ctx context.Context, provider, subject string) (*model.Identity, error) {
	var ident model.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_user_id, created_at
		 FROM identities
		 WHERE provider = $1 AND provider_user_id = $2`,
		provider, subject,
	).Scan(&ident.ID, &ident.UserID, &ident.Provider, &ident.ProviderUserID, &ident.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, storeError("failed to find identity", err)
	}
	return &ident, nil
}

// ListProviders は利用者に紐付くprovider名を名前順で返す。
func (r *PostgresIdentityRepo) ListProviders(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT provider FROM identities WHERE user_id = $1 ORDER BY provider`,
		userID,
	)
	if err != nil {
		return nil, storeError("failed to list identity providers", err)
	}
	defer rows.Close()

	providers := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, storeError("failed to scan identity provider", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate identity providers", err)
	}
	return providers, nil
}

var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
