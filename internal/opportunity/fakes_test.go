package opportunity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/rentafamily/internal/model"
	"github.com/hitoshi/rentafamily/internal/repository"
)

// memStore はリポジトリのインメモリ実装。条件付き更新はmuで直列化する。
type memStore struct {
	mu       sync.Mutex
	families map[string]*model.Family
	opps     map[string]*model.Opportunity
	order    []string
	rsvps    map[string][]string // opportunityID → attendeeIDs
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		families: make(map[string]*model.Family),
		opps:     make(map[string]*model.Opportunity),
		rsvps:    make(map[string][]string),
	}
}

type memFamilyRepo struct{ s *memStore }
type memOppRepo struct{ s *memStore }
type memRSVPRepo struct{ s *memStore }

var (
	_ repository.FamilyRepository      = memFamilyRepo{}
	_ repository.OpportunityRepository = memOppRepo{}
	_ repository.RSVPRepository        = memRSVPRepo{}
)

func (r memFamilyRepo) FindByOwnerID(_ context.Context, ownerID string) (*model.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
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
	r.s.families[ownerID] = &model.Family{OwnerID: ownerID}
	return true, nil
}

func (r memFamilyRepo) Upsert(_ context.Context, ownerID string, u model.FamilyUpdate) (*model.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.families[ownerID]
	if !ok {
		f = &model.Family{OwnerID: ownerID}
		r.s.families[ownerID] = f
	}
	if u.Name != nil {
		f.Name = *u.Name
	}
	cp := *f
	return &cp, nil
}

func (r memFamilyRepo) ListPublic(_ context.Context, _ int) ([]*model.Family, error) {
	return nil, nil
}

func (r memOppRepo) FindByID(_ context.Context, ownerID, opportunityID string) (*model.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	o, ok := r.s.opps[opportunityID]
	if !ok || o.OwnerID != ownerID {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r memOppRepo) Create(_ context.Context, o *model.Opportunity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if _, ok := r.s.families[o.OwnerID]; !ok {
		return fmt.Errorf("family %s missing", o.OwnerID)
	}
	cp := *o
	cp.Status = model.OpportunityStatusOpen
	r.s.opps[o.ID] = &cp
	r.s.order = append(r.s.order, o.ID)
	return nil
}

func (r memOppRepo) list(ownerID string, limit int) []model.OpportunityWithCount {
	var out []model.OpportunityWithCount
	for i := len(r.s.order) - 1; i >= 0; i-- {
		o := r.s.opps[r.s.order[i]]
		if ownerID != "" && o.OwnerID != ownerID {
			continue
		}
		out = append(out, model.OpportunityWithCount{Opportunity: *o, RSVPCount: len(r.s.rsvps[o.ID])})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (r memOppRepo) ListByOwner(_ context.Context, ownerID string) ([]model.OpportunityWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(ownerID, 0), nil
}

func (r memOppRepo) ListAll(_ context.Context, limit int) ([]model.OpportunityWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	return r.list("", limit), nil
}

func (r memOppRepo) Accept(_ context.Context, ownerID, opportunityID, acceptorID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.opps[opportunityID]
	if !ok || o.OwnerID != ownerID || o.Kind != model.OpportunityKindJob || o.Status != model.OpportunityStatusOpen {
		return false, nil
	}
	o.Status = model.OpportunityStatusAccepted
	o.AcceptedBy = acceptorID
	o.UpdatedAt = time.Now()
	return true, nil
}

func (r memOppRepo) Close(_ context.Context, ownerID, opportunityID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.opps[opportunityID]
	if !ok || o.OwnerID != ownerID {
		return false, nil
	}
	o.Status = model.OpportunityStatusClosed
	return true, nil
}

func (r memRSVPRepo) Add(_ context.Context, ownerID, opportunityID, attendeeID string) (*model.RSVP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.opps[opportunityID]
	if !ok || o.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if o.Kind != model.OpportunityKindEvent || o.Status != model.OpportunityStatusOpen {
		return nil, repository.ErrStateChanged
	}
	for _, a := range r.s.rsvps[opportunityID] {
		if a == attendeeID {
			return nil, repository.ErrDuplicate
		}
	}
	if len(r.s.rsvps[opportunityID]) >= o.Capacity {
		return nil, repository.ErrCapacityReached
	}
	r.s.rsvps[opportunityID] = append(r.s.rsvps[opportunityID], attendeeID)
	return &model.RSVP{ID: uuid.NewString(), OpportunityID: opportunityID, AttendeeID: attendeeID, CreatedAt: time.Now()}, nil
}

func (r memRSVPRepo) Count(_ context.Context, _, opportunityID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.rsvps[opportunityID]), nil
}

// recordingMetrics は記録された値を保持するMetricsCollector。
type recordingMetrics struct {
	mu          sync.Mutex
	created     []string
	transitions []string
	rsvps       []string
}

func (m *recordingMetrics) RecordSignup(string) {}

func (m *recordingMetrics) RecordOpportunityCreated(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, kind)
}

func (m *recordingMetrics) RecordOpportunityTransition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, status)
}

func (m *recordingMetrics) RecordRSVP(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rsvps = append(m.rsvps, outcome)
}

func (m *recordingMetrics) RecordHTTPStatus(int) {}
func (m *recordingMetrics) RecordRequestLatency(time.Duration) {}
func (m *recordingMetrics) RecordSessionsPurged(int) {}
