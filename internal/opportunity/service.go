// Package opportunity は募集の掲載・予約・参加申込のドメインロジックを提供する。
package opportunity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/rentafamily/internal/metrics"
	"github.com/hitoshi/rentafamily/internal/model"
	"github.com/hitoshi/rentafamily/internal/repository"
	"github.com/hitoshi/rentafamily/internal/security"
	"github.com/hitoshi/rentafamily/internal/validation"
)

// CreateInput は募集作成の入力。
// Kindが空の場合はjob、Capacityが1未満の場合は1として扱う。
type CreateInput struct {
	Title       string `validate:"required,max=200"`
	Category    string `validate:"max=100"`
	Description string `validate:"max=4000"`
	Location    string `validate:"max=200"`
	Schedule    string `validate:"max=200"`
	Rate        string `validate:"max=100"`
	Kind        string `validate:"oneof=job event"`
	Capacity    int    `validate:"max=10000"`
}

var createMessages = validation.Messages{
	"Title.required": "Opportunity title is required.",
	"Title":          "Opportunity title must be 200 characters or fewer.",
	"Kind":           "Type must be job or event.",
	"Capacity":       "Capacity must be 10000 or fewer.",
	"*":              "Opportunity details are too long.",
}

// Service は募集管理のサービス層。
type Service struct {
	oppRepo    repository.OpportunityRepository
	rsvpRepo   repository.RSVPRepository
	familyRepo repository.FamilyRepository
	sanitizer  security.TextSanitizer
	metrics    metrics.MetricsCollector
	listLimit  int
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	oppRepo repository.OpportunityRepository,
	rsvpRepo repository.RSVPRepository,
	familyRepo repository.FamilyRepository,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	listLimit int,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		oppRepo:    oppRepo,
		rsvpRepo:   rsvpRepo,
		familyRepo: familyRepo,
		sanitizer:  sanitizer,
		metrics:    collector,
		listLimit:  listLimit,
	}
}

// Create はユーザーのファミリーに募集を掲載する。
// 募集は常にopenで作成され、表示名はファミリー名（未設定ならFamily）となる。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Opportunity, error) {
	in.Title = s.clean(in.Title)
	in.Category = s.clean(in.Category)
	in.Description = s.clean(in.Description)
	in.Location = s.clean(in.Location)
	in.Schedule = s.clean(in.Schedule)
	in.Rate = s.clean(in.Rate)
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	if in.Kind == "" {
		in.Kind = string(model.OpportunityKindJob)
	}
	if apiErr := validation.Struct(in, createMessages); apiErr != nil {
		return nil, apiErr
	}
	if in.Capacity < 1 {
		in.Capacity = 1
	}

	if _, err := s.familyRepo.EnsureExists(ctx, userID); err != nil {
		return nil, fmt.Errorf("ファミリーの初期化に失敗しました: %w", err)
	}
	fam, err := s.familyRepo.FindByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ファミリーの取得に失敗しました: %w", err)
	}
	familyName := model.DefaultFamilyName
	if fam != nil && fam.Name != "" {
		familyName = fam.Name
	}

	now := time.Now().UTC()
	opp := &model.Opportunity{
		ID:          uuid.New().String(),
		OwnerID:     userID,
		FamilyName:  familyName,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Location:    in.Location,
		Schedule:    in.Schedule,
		Rate:        in.Rate,
		Kind:        model.OpportunityKind(in.Kind),
		Capacity:    in.Capacity,
		Status:      model.OpportunityStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.oppRepo.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("募集の作成に失敗しました: %w", err)
	}

	s.metrics.RecordOpportunityCreated(in.Kind)
	slog.Info("opportunity created",
		slog.String("owner_id", userID),
		slog.String("opportunity_id", opp.ID),
		slog.String("kind", in.Kind),
	)
	return opp, nil
}

// ListOwn はユーザー自身の募集を参加申込数付きで返す。
func (s *Service) ListOwn(ctx context.Context, userID string) ([]model.OpportunityWithCount, error) {
	opps, err := s.oppRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("募集一覧の取得に失敗しました: %w", err)
	}
	return opps, nil
}

// ListAll は全ファミリーの募集を参加申込数付きで新しい順に上限件数まで返す。
func (s *Service) ListAll(ctx context.Context) ([]model.OpportunityWithCount, error) {
	opps, err := s.oppRepo.ListAll(ctx, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("募集一覧の取得に失敗しました: %w", err)
	}
	return opps, nil
}

// Accept はopenのジョブを予約し、予約者を記録する。
// 種類と状態を確認した後、所有者自身による予約を拒否する。
func (s *Service) Accept(ctx context.Context, userID, ownerID, opportunityID string) (*model.Opportunity, error) {
	opp, err := s.find(ctx, ownerID, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.Kind != model.OpportunityKindJob {
		return nil, model.NewNotAJobError()
	}
	if !opp.Status.CanTransitionTo(opp.Kind, model.OpportunityStatusAccepted) {
		return nil, model.NewInvalidTransitionError(opp.Status, model.OpportunityStatusAccepted)
	}
	if opp.OwnerID == userID {
		return nil, model.NewOwnOpportunityError(opp.Kind)
	}

	ok, err := s.oppRepo.Accept(ctx, ownerID, opportunityID, userID)
	if err != nil {
		return nil, fmt.Errorf("募集の予約に失敗しました: %w", err)
	}
	if !ok {
		// 読み取り後に他のユーザーが先に予約または終了した
		current, err := s.find(ctx, ownerID, opportunityID)
		if err != nil {
			return nil, err
		}
		return nil, model.NewInvalidTransitionError(current.Status, model.OpportunityStatusAccepted)
	}

	s.metrics.RecordOpportunityTransition(string(model.OpportunityStatusAccepted))
	slog.Info("opportunity accepted",
		slog.String("owner_id", ownerID),
		slog.String("opportunity_id", opportunityID),
		slog.String("accepted_by", userID),
	)
	return s.find(ctx, ownerID, opportunityID)
}

// Close は募集をclosedにする。所有者のみが実行でき、closedに対しては何もせず成功する。
func (s *Service) Close(ctx context.Context, userID, ownerID, opportunityID string) (*model.Opportunity, error) {
	opp, err := s.find(ctx, ownerID, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.OwnerID != userID {
		return nil, model.NewForbiddenError("Only the owner can close this opportunity.")
	}
	if !opp.Status.CanTransitionTo(opp.Kind, model.OpportunityStatusClosed) {
		return nil, model.NewInvalidTransitionError(opp.Status, model.OpportunityStatusClosed)
	}

	ok, err := s.oppRepo.Close(ctx, ownerID, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("募集の終了に失敗しました: %w", err)
	}
	if !ok {
		return nil, model.NewOpportunityNotFoundError(opportunityID)
	}

	if opp.Status != model.OpportunityStatusClosed {
		s.metrics.RecordOpportunityTransition(string(model.OpportunityStatusClosed))
		slog.Info("opportunity closed",
			slog.String("owner_id", ownerID),
			slog.String("opportunity_id", opportunityID),
			slog.String("from", string(opp.Status)),
		)
	}
	return s.find(ctx, ownerID, opportunityID)
}

// RSVP はopenのイベントに参加申込を行う。
// 定員の判定と追加はリポジトリのトランザクション内で行う。
func (s *Service) RSVP(ctx context.Context, userID, ownerID, opportunityID string) (*model.RSVP, error) {
	opp, err := s.find(ctx, ownerID, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.Kind != model.OpportunityKindEvent {
		return nil, model.NewNotAnEventError()
	}
	if opp.Status != model.OpportunityStatusOpen {
		return nil, model.NewOpportunityNotOpenError(opp.Status)
	}
	if opp.OwnerID == userID {
		return nil, model.NewOwnOpportunityError(opp.Kind)
	}

	rsvp, err := s.rsvpRepo.Add(ctx, ownerID, opportunityID, userID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrCapacityReached):
		s.metrics.RecordRSVP(metrics.RSVPOutcomeFull)
		return nil, model.NewEventFullError()
	case errors.Is(err, repository.ErrDuplicate):
		s.metrics.RecordRSVP(metrics.RSVPOutcomeDuplicate)
		return nil, model.NewDuplicateRSVPError()
	case errors.Is(err, repository.ErrNotFound):
		return nil, model.NewOpportunityNotFoundError(opportunityID)
	case errors.Is(err, repository.ErrStateChanged):
		return nil, model.NewOpportunityNotOpenError(model.OpportunityStatusClosed)
	default:
		return nil, fmt.Errorf("参加申込に失敗しました: %w", err)
	}

	s.metrics.RecordRSVP(metrics.RSVPOutcomeAdded)
	slog.Info("rsvp added",
		slog.String("owner_id", ownerID),
		slog.String("opportunity_id", opportunityID),
		slog.String("attendee_id", userID),
	)
	return rsvp, nil
}

// CountRSVPs は募集の参加申込数を返す。
func (s *Service) CountRSVPs(ctx context.Context, ownerID, opportunityID string) (int, error) {
	if _, err := s.find(ctx, ownerID, opportunityID); err != nil {
		return 0, err
	}
	n, err := s.rsvpRepo.Count(ctx, ownerID, opportunityID)
	if err != nil {
		return 0, fmt.Errorf("参加申込数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// find は募集を取得する。ID形式が不正な場合も未検出として扱う。
func (s *Service) find(ctx context.Context, ownerID, opportunityID string) (*model.Opportunity, error) {
	if !validation.IsUUID(ownerID) || !validation.IsUUID(opportunityID) {
		return nil, model.NewOpportunityNotFoundError(opportunityID)
	}
	opp, err := s.oppRepo.FindByID(ctx, ownerID, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("募集の取得に失敗しました: %w", err)
	}
	if opp == nil {
		return nil, model.NewOpportunityNotFoundError(opportunityID)
	}
	return opp, nil
}

func (s *Service) clean(v string) string {
	if s.sanitizer == nil {
		return strings.TrimSpace(v)
	}
	return s.sanitizer.SanitizeText(v)
}
