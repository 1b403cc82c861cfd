package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgresRSVPRepo はPostgreSQLを使用した参加申込リポジトリ。
type PostgresRSVPRepo struct {
	db *sql.DB
}

// NewPostgresRSVPRepo はPostgresRSVPRepoを生成する。
func NewPostgresRSVPRepo(db *sql.DB) *PostgresRSVPRepo {
	return &PostgresRSVPRepo{db: db}
}

// Add は募集行をSELECT FOR UPDATEでロックした上で検証し、参加申込を追加する。
// 同一募集への申込はロックにより直列化されるため、定員を超えることはない。
func (r *PostgresRSVPRepo) Add(ctx context.Context, ownerID, opportunityID, attendeeID string) (*model.RSVP, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var kind model.OpportunityKind
	var status model.OpportunityStatus
	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT kind, status, capacity
		 FROM opportunities
		 WHERE owner_id = $1 AND id = $2
		 FOR UPDATE`,
		ownerID, opportunityID,
	).Scan(&kind, &status, &capacity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("opportunity %s: %w", opportunityID, ErrNotFound)
	}
	if err != nil {
		return nil, storeError("募集のロックに失敗しました", err)
	}
	if kind != model.OpportunityKindEvent || status != model.OpportunityStatusOpen {
		return nil, fmt.Errorf("opportunity %s is %s %s: %w", opportunityID, status, kind, ErrStateChanged)
	}

	var already bool
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(bool_or(attendee_id = $2), false)
		 FROM rsvps
		 WHERE opportunity_id = $1`,
		opportunityID, attendeeID,
	).Scan(&count, &already)
	if err != nil {
		return nil, storeError("参加申込数の取得に失敗しました", err)
	}
	if already {
		return nil, fmt.Errorf("attendee %s: %w", attendeeID, ErrDuplicate)
	}
	if count >= capacity {
		return nil, fmt.Errorf("%d/%d: %w", count, capacity, ErrCapacityReached)
	}

	rsvp := &model.RSVP{
		ID:            uuid.New().String(),
		OpportunityID: opportunityID,
		AttendeeID:    attendeeID,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO rsvps (id, opportunity_id, attendee_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		rsvp.ID, rsvp.OpportunityID, rsvp.AttendeeID, rsvp.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("attendee %s: %w", attendeeID, ErrDuplicate)
		}
		return nil, storeError("参加申込の追加に失敗しました", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("failed to commit transaction", err)
	}
	return rsvp, nil
}

// Count は募集の参加申込数を返す。
func (r *PostgresRSVPRepo) Count(ctx context.Context, ownerID, opportunityID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*)
		 FROM rsvps r
		 JOIN opportunities o ON o.id = r.opportunity_id
		 WHERE o.owner_id = $1 AND r.opportunity_id = $2`,
		ownerID, opportunityID,
	).Scan(&count)
	if err != nil {
		return 0, storeError("参加申込数の取得に失敗しました", err)
	}
	return count, nil
}

// compile-time interface check
var _ RSVPRepository = (*PostgresRSVPRepo)(nil)
