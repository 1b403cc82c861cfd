package model

import "testing"

func TestOpportunityStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OpportunityStatus
		kind OpportunityKind
		to   OpportunityStatus
		want bool
	}{
		{OpportunityStatusOpen, OpportunityKindJob, OpportunityStatusAccepted, true},
		{OpportunityStatusOpen, OpportunityKindEvent, OpportunityStatusAccepted, false},
		{OpportunityStatusAccepted, OpportunityKindJob, OpportunityStatusAccepted, false},
		{OpportunityStatusClosed, OpportunityKindJob, OpportunityStatusAccepted, false},
		{OpportunityStatusOpen, OpportunityKindJob, OpportunityStatusClosed, true},
		{OpportunityStatusOpen, OpportunityKindEvent, OpportunityStatusClosed, true},
		{OpportunityStatusAccepted, OpportunityKindJob, OpportunityStatusClosed, true},
		{OpportunityStatusClosed, OpportunityKindEvent, OpportunityStatusClosed, true},
		{OpportunityStatusClosed, OpportunityKindJob, OpportunityStatusOpen, false},
		{OpportunityStatusAccepted, OpportunityKindJob, OpportunityStatusOpen, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.kind, tt.to); got != tt.want {
			t.Errorf("%s(%s) -> %s = %v, want %v", tt.from, tt.kind, tt.to, got, tt.want)
		}
	}
}

func TestOpportunityKind_Valid(t *testing.T) {
	for _, k := range []OpportunityKind{OpportunityKindJob, OpportunityKindEvent} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	for _, k := range []OpportunityKind{"", "party", "JOB"} {
		if k.Valid() {
			t.Errorf("%q should be invalid", k)
		}
	}
}

func TestNewOwnOpportunityError_MessageByKind(t *testing.T) {
	if got := NewOwnOpportunityError(OpportunityKindJob).Message; got != "You cannot reserve your own opportunity." {
		t.Errorf("job message = %q", got)
	}
	if got := NewOwnOpportunityError(OpportunityKindEvent).Message; got != "You cannot RSVP to your own event." {
		t.Errorf("event message = %q", got)
	}
}
