// Package family はファミリープロフィールとメンバー管理のドメインロジックを提供する。
package family

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/rentafamily/internal/model"
	"github.com/hitoshi/rentafamily/internal/repository"
	"github.com/hitoshi/rentafamily/internal/security"
	"github.com/hitoshi/rentafamily/internal/validation"
)

// Limits は公開一覧の取得件数の上限。
type Limits struct {
	PublicFamilies  int
	FeaturedMembers int
}

// DefaultLimits は既定の取得件数の上限を返す。
func DefaultLimits() Limits {
	return Limits{PublicFamilies: 100, FeaturedMembers: 10}
}

// Dashboard はログインユーザーのファミリー・メンバー・募集をまとめたもの。
type Dashboard struct {
	Family        *model.Family
	Members       []*model.Member
	Opportunities []model.OpportunityWithCount
}

// Profile は公開プロフィールとして表示するファミリーと公開メンバー。
type Profile struct {
	Family  *model.Family
	Members []*model.Member
}

// UpdateFamilyInput はファミリープロフィールの部分更新の入力。
// nilのフィールドは変更しない。
type UpdateFamilyInput struct {
	Name     *string `validate:"omitempty,max=100"`
	Bio      *string `validate:"omitempty,max=2000"`
	Location *string `validate:"omitempty,max=200"`
	IsPublic *bool
}

// AddMemberInput はメンバー追加の入力。
type AddMemberInput struct {
	Name     string `validate:"required,max=100"`
	Role     string `validate:"max=100"`
	Age      string `validate:"max=20"`
	Bio      string `validate:"max=2000"`
	IsPublic bool
}

var (
	updateFamilyMessages = validation.Messages{
		"Name":     "Family name must be 100 characters or fewer.",
		"Bio":      "Bio must be 2000 characters or fewer.",
		"Location": "Location must be 200 characters or fewer.",
	}
	addMemberMessages = validation.Messages{
		"Name.required": "Member name is required.",
		"Name":          "Member name must be 100 characters or fewer.",
		"*":             "Member details are too long.",
	}
)

// Service はファミリー管理のサービス層。
type Service struct {
	familyRepo repository.FamilyRepository
	memberRepo repository.MemberRepository
	oppRepo    repository.OpportunityRepository
	sanitizer  security.TextSanitizer
	limits     Limits
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	familyRepo repository.FamilyRepository,
	memberRepo repository.MemberRepository,
	oppRepo repository.OpportunityRepository,
	sanitizer security.TextSanitizer,
	limits Limits,
) *Service {
	return &Service{
		familyRepo: familyRepo,
		memberRepo: memberRepo,
		oppRepo:    oppRepo,
		sanitizer:  sanitizer,
		limits:     limits,
	}
}

// EnsureFamily はユーザーのファミリーが存在しなければ非公開の空プロフィールを作成し、
// 現在のファミリーを返す。既存の値は変更しない。
func (s *Service) EnsureFamily(ctx context.Context, userID string) (*model.Family, error) {
	created, err := s.familyRepo.EnsureExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ファミリーの初期化に失敗しました: %w", err)
	}
	if created {
		slog.Info("family created", slog.String("owner_id", userID))
	}

	fam, err := s.familyRepo.FindByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ファミリーの取得に失敗しました: %w", err)
	}
	if fam == nil {
		return nil, model.NewFamilyNotFoundError(userID)
	}
	return fam, nil
}

// Dashboard はファミリーを必要に応じて作成した上で、
// ファミリー・メンバー・自分の募集をまとめて返す。
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	fam, err := s.EnsureFamily(ctx, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	opps, err := s.oppRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("募集一覧の取得に失敗しました: %w", err)
	}

	return &Dashboard{Family: fam, Members: members, Opportunities: opps}, nil
}

// UpdateFamily はファミリープロフィールを部分更新する。
// テキストはマークアップを除去してから保存する。
func (s *Service) UpdateFamily(ctx context.Context, userID string, in UpdateFamilyInput) (*model.Family, error) {
	in.Name = s.cleanPtr(in.Name)
	in.Bio = s.cleanPtr(in.Bio)
	in.Location = s.cleanPtr(in.Location)
	if apiErr := validation.Struct(in, updateFamilyMessages); apiErr != nil {
		return nil, apiErr
	}

	fam, err := s.familyRepo.Upsert(ctx, userID, model.FamilyUpdate{
		Name:     in.Name,
		Bio:      in.Bio,
		Location: in.Location,
		IsPublic: in.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("ファミリーの更新に失敗しました: %w", err)
	}

	slog.Info("family updated",
		slog.String("owner_id", userID),
		slog.Bool("is_public", fam.IsPublic),
	)
	return fam, nil
}

// AddMember はファミリーにメンバーを追加する。
// ファミリーが未作成の場合は先に作成する。
func (s *Service) AddMember(ctx context.Context, userID string, in AddMemberInput) (*model.Member, error) {
	in.Name = s.clean(in.Name)
	in.Role = s.clean(in.Role)
	in.Age = s.clean(in.Age)
	in.Bio = s.clean(in.Bio)
	if apiErr := validation.Struct(in, addMemberMessages); apiErr != nil {
		return nil, apiErr
	}

	if _, err := s.familyRepo.EnsureExists(ctx, userID); err != nil {
		return nil, fmt.Errorf("ファミリーの初期化に失敗しました: %w", err)
	}

	member := &model.Member{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Name:      in.Name,
		Role:      in.Role,
		Age:       in.Age,
		Bio:       in.Bio,
		IsPublic:  in.IsPublic,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("メンバーの追加に失敗しました: %w", err)
	}

	slog.Info("member added",
		slog.String("owner_id", userID),
		slog.String("member_id", member.ID),
	)
	return member, nil
}

// ListPublicFamilies は公開ファミリーの一覧を返す。
func (s *Service) ListPublicFamilies(ctx context.Context) ([]*model.Family, error) {
	families, err := s.familyRepo.ListPublic(ctx, s.limits.PublicFamilies)
	if err != nil {
		return nil, fmt.Errorf("公開ファミリー一覧の取得に失敗しました: %w", err)
	}
	return families, nil
}

// PublicProfile は公開ファミリーのプロフィールと公開メンバーを返す。
// 非公開のファミリーはPROFILE_NOT_PUBLICとする。
func (s *Service) PublicProfile(ctx context.Context, ownerID string) (*Profile, error) {
	if !validation.IsUUID(ownerID) {
		return nil, model.NewFamilyNotFoundError(ownerID)
	}

	fam, err := s.familyRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ファミリーの取得に失敗しました: %w", err)
	}
	if fam == nil {
		return nil, model.NewFamilyNotFoundError(ownerID)
	}
	if !fam.IsPublic {
		return nil, model.NewProfileNotPublicError()
	}

	members, err := s.memberRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	public := make([]*model.Member, 0, len(members))
	for _, m := range members {
		if m.IsPublic {
			public = append(public, m)
		}
	}
	return &Profile{Family: fam, Members: public}, nil
}

// ListFeaturedMembers は全ファミリーの公開メンバーを新しい順に上限件数まで返す。
func (s *Service) ListFeaturedMembers(ctx context.Context) ([]*model.Member, error) {
	members, err := s.memberRepo.ListPublic(ctx, s.limits.FeaturedMembers)
	if err != nil {
		return nil, fmt.Errorf("公開メンバー一覧の取得に失敗しました: %w", err)
	}
	return members, nil
}

func (s *Service) clean(v string) string {
	if s.sanitizer == nil {
		return strings.TrimSpace(v)
	}
	return s.sanitizer.SanitizeText(v)
}

func (s *Service) cleanPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := s.clean(*v)
	return &c
}
