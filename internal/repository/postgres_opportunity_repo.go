package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgresOpportunityRepo はPostgreSQLを使用した募集リポジトリ。
type PostgresOpportunityRepo struct {
	db *sql.DB
}

// NewPostgresOpportunityRepo はPostgresOpportunityRepoを生成する。
func NewPostgresOpportunityRepo(db *sql.DB) *PostgresOpportunityRepo {
	return &PostgresOpportunityRepo{db: db}
}

const opportunityColumns = `o.id, o.owner_id, o.family_name, o.title, o.category, o.description,
	o.location, o.schedule, o.rate, o.kind, o.capacity, o.status, o.accepted_by, o.created_at, o.updated_at`

func scanOpportunity(row rowScanner, extra ...any) (*model.Opportunity, error) {
	o := &model.Opportunity{}
	var acceptedBy sql.NullString
	dest := []any{
		&o.ID, &o.OwnerID, &o.FamilyName, &o.Title, &o.Category, &o.Description,
		&o.Location, &o.Schedule, &o.Rate, &o.Kind, &o.Capacity, &o.Status, &acceptedBy, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	o.AcceptedBy = acceptedBy.String
	return o, nil
}

// FindByID は所有ユーザーIDと募集IDで募集を取得する。見つからない場合はnilを返す。
func (r *PostgresOpportunityRepo) FindByID(ctx context.Context, ownerID, opportunityID string) (*model.Opportunity, error) {
	o, err := scanOpportunity(r.db.QueryRowContext(ctx,
		`SELECT `+opportunityColumns+`
		 FROM opportunities o
		 WHERE o.owner_id = $1 AND o.id = $2`,
		ownerID, opportunityID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("募集の取得に失敗しました", err)
	}
	return o, nil
}

// Create は募集を作成する。statusは常にopenで保存する。
func (r *PostgresOpportunityRepo) Create(ctx context.Context, o *model.Opportunity) error {
	o.Status = model.OpportunityStatusOpen
	o.AcceptedBy = ""
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO opportunities
		     (id, owner_id, family_name, title, category, description, location, schedule, rate,
		      kind, capacity, status, accepted_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL, $13, $14)`,
		o.ID, o.OwnerID, o.FamilyName, o.Title, o.Category, o.Description, o.Location, o.Schedule, o.Rate,
		o.Kind, o.Capacity, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return storeError("募集の作成に失敗しました", err)
	}
	return nil
}

// ListByOwner はファミリーの全募集を参加申込数付きで新しい順に返す。
func (r *PostgresOpportunityRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.OpportunityWithCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+`,
		        (SELECT count(*) FROM rsvps r WHERE r.opportunity_id = o.id)
		 FROM opportunities o
		 WHERE o.owner_id = $1
		 ORDER BY o.created_at DESC, o.id`,
		ownerID,
	)
	if err != nil {
		return nil, storeError("募集一覧の取得に失敗しました", err)
	}
	return collectOpportunities(rows)
}

// ListAll は全ファミリーの募集を参加申込数付きで新しい順に最大limit件返す。
func (r *PostgresOpportunityRepo) ListAll(ctx context.Context, limit int) ([]model.OpportunityWithCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+`,
		        (SELECT count(*) FROM rsvps r WHERE r.opportunity_id = o.id)
		 FROM opportunities o
		 ORDER BY o.created_at DESC, o.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storeError("全募集一覧の取得に失敗しました", err)
	}
	return collectOpportunities(rows)
}

func collectOpportunities(rows *sql.Rows) ([]model.OpportunityWithCount, error) {
	defer rows.Close()

	var result []model.OpportunityWithCount
	for rows.Next() {
		var count int
		o, err := scanOpportunity(rows, &count)
		if err != nil {
			return nil, storeError("募集の読み取りに失敗しました", err)
		}
		result = append(result, model.OpportunityWithCount{Opportunity: *o, RSVPCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("募集一覧の走査に失敗しました", err)
	}
	return result, nil
}

// Accept はstatusがopenのジョブに限りacceptedへ更新し、予約者を記録する。
// 判定と更新を1文で行うため、同時に予約された場合も成功するのは1件のみ。
func (r *PostgresOpportunityRepo) Accept(ctx context.Context, ownerID, opportunityID, acceptorID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE opportunities
		 SET status = 'accepted', accepted_by = $3, updated_at = now()
		 WHERE owner_id = $1 AND id = $2 AND kind = 'job' AND status = 'open'`,
		ownerID, opportunityID, acceptorID,
	)
	if err != nil {
		return false, storeError("募集の予約に失敗しました", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeError("募集の予約結果の取得に失敗しました", err)
	}
	return n == 1, nil
}

// Close はstatusをclosedに更新する。対象が存在しない場合はfalseを返す。
func (r *PostgresOpportunityRepo) Close(ctx context.Context, ownerID, opportunityID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE opportunities
		 SET status = 'closed',
		     updated_at = CASE WHEN status = 'closed' THEN updated_at ELSE now() END
		 WHERE owner_id = $1 AND id = $2`,
		ownerID, opportunityID,
	)
	if err != nil {
		return false, storeError("募集の終了に失敗しました", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeError("募集の終了結果の取得に失敗しました", err)
	}
	return n == 1, nil
}

// compile-time interface check
var _ OpportunityRepository = (*PostgresOpportunityRepo)(nil)
