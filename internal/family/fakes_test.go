package family

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/rentafamily/internal/model"
	"github.com/hitoshi/rentafamily/internal/repository"
)

// memStore はリポジトリのインメモリ実装。
type memStore struct {
	mu       sync.Mutex
	families map[string]*model.Family
	members  []*model.Member
	opps     []model.OpportunityWithCount
	err      error // 設定されている場合、全操作がこのエラーを返す
	ensured  int
}

func newMemStore() *memStore {
	return &memStore{families: make(map[string]*model.Family)}
}

type memFamilyRepo struct{ s *memStore }
type memMemberRepo struct{ s *memStore }
type memOppRepo struct{ s *memStore }

var (
	_ repository.FamilyRepository      = memFamilyRepo{}
	_ repository.MemberRepository      = memMemberRepo{}
	_ repository.OpportunityRepository = memOppRepo{}
)

func (r memFamilyRepo) FindByOwnerID(_ context.Context, ownerID string) (*model.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	f, ok := r.s.families[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r memFamilyRepo) EnsureExists(_ context.Context, ownerID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return false, r.s.err
	}
	if _, ok := r.s.families[ownerID]; ok {
		return false, nil
	}
	now := time.Now()
	r.s.families[ownerID] = &model.Family{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	r.s.ensured++
	return true, nil
}

func (r memFamilyRepo) Upsert(_ context.Context, ownerID string, u model.FamilyUpdate) (*model.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	f, ok := r.s.families[ownerID]
	if !ok {
		f = &model.Family{OwnerID: ownerID, CreatedAt: time.Now()}
		r.s.families[ownerID] = f
	}
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Bio != nil {
		f.Bio = *u.Bio
	}
	if u.Location != nil {
		f.Location = *u.Location
	}
	if u.IsPublic != nil {
		f.IsPublic = *u.IsPublic
	}
	f.UpdatedAt = time.Now()
	cp := *f
	return &cp, nil
}

func (r memFamilyRepo) ListPublic(_ context.Context, limit int) ([]*model.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []*model.Family
	for _, f := range r.s.families {
		if f.IsPublic {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memMemberRepo) ListByOwner(_ context.Context, ownerID string) ([]*model.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []*model.Member
	for _, m := range r.s.members {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMemberRepo) Create(_ context.Context, m *model.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	r.s.members = append(r.s.members, m)
	return nil
}

func (r memMemberRepo) ListPublic(_ context.Context, limit int) ([]*model.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []*model.Member
	for i := len(r.s.members) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.members[i].IsPublic {
			out = append(out, r.s.members[i])
		}
	}
	return out, nil
}

func (r memOppRepo) FindByID(_ context.Context, _, _ string) (*model.Opportunity, error) {
	return nil, nil
}

func (r memOppRepo) Create(_ context.Context, o *model.Opportunity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.opps = append(r.s.opps, model.OpportunityWithCount{Opportunity: *o})
	return nil
}

func (r memOppRepo) ListByOwner(_ context.Context, ownerID string) ([]model.OpportunityWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []model.OpportunityWithCount
	for _, o := range r.s.opps {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r memOppRepo) ListAll(_ context.Context, _ int) ([]model.OpportunityWithCount, error) {
	return r.s.opps, nil
}

func (r memOppRepo) Accept(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

func (r memOppRepo) Close(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}
