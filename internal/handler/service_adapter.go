package handler

import (
	"context"

	"github.com/hitoshi/rentafamily/internal/family"
	"github.com/hitoshi/rentafamily/internal/model"
	"github.com/hitoshi/rentafamily/internal/opportunity"
)

// FamilyServiceAdapter は family.Service を FamilyServiceInterface と
// DirectoryServiceInterface に適合させるアダプタ。
type FamilyServiceAdapter struct {
	svc *family.Service
}

// NewFamilyServiceAdapter はFamilyServiceAdapterを生成する。
func NewFamilyServiceAdapter(svc *family.Service) *FamilyServiceAdapter {
	return &FamilyServiceAdapter{svc: svc}
}

// Dashboard はダッシュボードをhandlerレスポンス型で返す。
func (a *FamilyServiceAdapter) Dashboard(ctx context.Context, userID string) (*dashboardResponse, error) {
	d, err := a.svc.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dashboardResponse{
		Family:        toFamilyResponse(d.Family),
		Members:       toMemberResponses(d.Members),
		Opportunities: toOpportunityResponses(d.Opportunities),
	}, nil
}

// UpdateFamily はファミリーを更新しhandlerレスポンス型で返す。
func (a *FamilyServiceAdapter) UpdateFamily(ctx context.Context, userID string, req updateFamilyRequest) (*familyResponse, error) {
	f, err := a.svc.UpdateFamily(ctx, userID, family.UpdateFamilyInput{
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	resp := toFamilyResponse(f)
	return &resp, nil
}

// AddMember はメンバーを追加しhandlerレスポンス型で返す。
func (a *FamilyServiceAdapter) AddMember(ctx context.Context, userID string, req addMemberRequest) (*memberResponse, error) {
	m, err := a.svc.AddMember(ctx, userID, family.AddMemberInput{
		Name:     req.Name,
		Role:     req.Role,
		Age:      req.Age,
		Bio:      req.Bio,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	resp := toMemberResponse(m)
	return &resp, nil
}

// ListPublicFamilies は公開ファミリー一覧をhandlerレスポンス型で返す。
func (a *FamilyServiceAdapter) ListPublicFamilies(ctx context.Context) ([]familyResponse, error) {
	families, err := a.svc.ListPublicFamilies(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]familyResponse, len(families))
	for i, f := range families {
		results[i] = toFamilyResponse(f)
	}
	return results, nil
}

// PublicProfile は公開プロフィールをhandlerレスポンス型で返す。
func (a *FamilyServiceAdapter) PublicProfile(ctx context.Context, ownerID string) (*profileResponse, error) {
	p, err := a.svc.PublicProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &profileResponse{
		Family:  toFamilyResponse(p.Family),
		Members: toMemberResponses(p.Members),
	}, nil
}

// ListFeaturedMembers は注目メンバー一覧をhandlerレスポンス型で返す。
func (a *FamilyServiceAdapter) ListFeaturedMembers(ctx context.Context) ([]memberResponse, error) {
	members, err := a.svc.ListFeaturedMembers(ctx)
	if err != nil {
		return nil, err
	}
	return toMemberResponses(members), nil
}

// OpportunityServiceAdapter は opportunity.Service を OpportunityServiceInterface に適合させるアダプタ。
type OpportunityServiceAdapter struct {
	svc *opportunity.Service
}

// NewOpportunityServiceAdapter はOpportunityServiceAdapterを生成する。
func NewOpportunityServiceAdapter(svc *opportunity.Service) *OpportunityServiceAdapter {
	return &OpportunityServiceAdapter{svc: svc}
}

// Create は募集を作成しhandlerレスポンス型で返す。
func (a *OpportunityServiceAdapter) Create(ctx context.Context, userID string, req createOpportunityRequest) (*opportunityResponse, error) {
	o, err := a.svc.Create(ctx, userID, opportunity.CreateInput{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
		Schedule:    req.Schedule,
		Rate:        req.Rate,
		Kind:        req.Kind,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return nil, err
	}
	resp := toOpportunityResponse(model.OpportunityWithCount{Opportunity: *o})
	return &resp, nil
}

// ListAll は全募集をhandlerレスポンス型で返す。
func (a *OpportunityServiceAdapter) ListAll(ctx context.Context) ([]opportunityResponse, error) {
	opps, err := a.svc.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toOpportunityResponses(opps), nil
}

// ListOwn は自分の募集をhandlerレスポンス型で返す。
func (a *OpportunityServiceAdapter) ListOwn(ctx context.Context, userID string) ([]opportunityResponse, error) {
	opps, err := a.svc.ListOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toOpportunityResponses(opps), nil
}

// Accept はジョブを予約しhandlerレスポンス型で返す。
func (a *OpportunityServiceAdapter) Accept(ctx context.Context, userID, ownerID, opportunityID string) (*opportunityResponse, error) {
	o, err := a.svc.Accept(ctx, userID, ownerID, opportunityID)
	if err != nil {
		return nil, err
	}
	resp := toOpportunityResponse(model.OpportunityWithCount{Opportunity: *o})
	return &resp, nil
}

// Close は募集を終了しhandlerレスポンス型で返す。
func (a *OpportunityServiceAdapter) Close(ctx context.Context, userID, ownerID, opportunityID string) (*opportunityResponse, error) {
	o, err := a.svc.Close(ctx, userID, ownerID, opportunityID)
	if err != nil {
		return nil, err
	}
	resp := toOpportunityResponse(model.OpportunityWithCount{Opportunity: *o})
	return &resp, nil
}

// RSVP は参加申込を追加しhandlerレスポンス型で返す。
func (a *OpportunityServiceAdapter) RSVP(ctx context.Context, userID, ownerID, opportunityID string) (*rsvpResponse, error) {
	rsvp, err := a.svc.RSVP(ctx, userID, ownerID, opportunityID)
	if err != nil {
		return nil, err
	}
	return &rsvpResponse{
		ID:            rsvp.ID,
		OpportunityID: rsvp.OpportunityID,
		AttendeeID:    rsvp.AttendeeID,
		CreatedAt:     rsvp.CreatedAt,
	}, nil
}

// CountRSVPs は参加申込数を返す。
func (a *OpportunityServiceAdapter) CountRSVPs(ctx context.Context, ownerID, opportunityID string) (int, error) {
	return a.svc.CountRSVPs(ctx, ownerID, opportunityID)
}

// toFamilyResponse はmodel.Familyをhandlerのレスポンス型に変換する。
func toFamilyResponse(f *model.Family) familyResponse {
	return familyResponse{
		OwnerID:   f.OwnerID,
		Name:      f.Name,
		Bio:       f.Bio,
		Location:  f.Location,
		IsPublic:  f.IsPublic,
		UpdatedAt: f.UpdatedAt,
	}
}

// toMemberResponse はmodel.Memberをhandlerのレスポンス型に変換する。
func toMemberResponse(m *model.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Role:      m.Role,
		Age:       m.Age,
		Bio:       m.Bio,
		IsPublic:  m.IsPublic,
		CreatedAt: m.CreatedAt,
	}
}

func toMemberResponses(members []*model.Member) []memberResponse {
	results := make([]memberResponse, len(members))
	for i, m := range members {
		results[i] = toMemberResponse(m)
	}
	return results
}

// toOpportunityResponse は参加申込数付きの募集をhandlerのレスポンス型に変換する。
func toOpportunityResponse(o model.OpportunityWithCount) opportunityResponse {
	return opportunityResponse{
		ID:          o.ID,
		OwnerID:     o.OwnerID,
		FamilyName:  o.FamilyName,
		Title:       o.Title,
		Category:    o.Category,
		Description: o.Description,
		Location:    o.Location,
		Schedule:    o.Schedule,
		Rate:        o.Rate,
		Kind:        string(o.Kind),
		Capacity:    o.Capacity,
		Status:      string(o.Status),
		AcceptedBy:  o.AcceptedBy,
		RSVPCount:   o.RSVPCount,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOpportunityResponses(opps []model.OpportunityWithCount) []opportunityResponse {
	results := make([]opportunityResponse, len(opps))
	for i, o := range opps {
		results[i] = toOpportunityResponse(o)
	}
	return results
}

// compile-time interface check
var (
	_ FamilyServiceInterface      = (*FamilyServiceAdapter)(nil)
	_ DirectoryServiceInterface   = (*FamilyServiceAdapter)(nil)
	_ OpportunityServiceInterface = (*OpportunityServiceAdapter)(nil)
)
