package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// OpportunityServiceInterface は募集ハンドラーが必要とするサービスインターフェース。
type OpportunityServiceInterface interface {
	// Create はログインユーザーのファミリーに募集を掲載する。
	Create(ctx context.Context, userID string, req createOpportunityRequest) (*opportunityResponse, error)
	// ListAll は全ファミリーの募集を参加申込数付きで返す。
	ListAll(ctx context.Context) ([]opportunityResponse, error)
	// ListOwn はログインユーザー自身の募集を参加申込数付きで返す。
	ListOwn(ctx context.Context, userID string) ([]opportunityResponse, error)
	// Accept はジョブを予約する。
	Accept(ctx context.Context, userID, ownerID, opportunityID string) (*opportunityResponse, error)
	// Close は募集を終了する。所有者のみ実行できる。
	Close(ctx context.Context, userID, ownerID, opportunityID string) (*opportunityResponse, error)
	// RSVP はイベントに参加申込する。
	RSVP(ctx context.Context, userID, ownerID, opportunityID string) (*rsvpResponse, error)
	// CountRSVPs はイベントの参加申込数を返す。
	CountRSVPs(ctx context.Context, ownerID, opportunityID string) (int, error)
}

// OpportunityHandler は募集管理のHTTPハンドラー。
type OpportunityHandler struct {
	service OpportunityServiceInterface
}

// NewOpportunityHandler はOpportunityHandlerを生成する。
func NewOpportunityHandler(service OpportunityServiceInterface) *OpportunityHandler {
	return &OpportunityHandler{service: service}
}

// createOpportunityRequest は募集作成リクエストのボディ。
type createOpportunityRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Schedule    string `json:"schedule"`
	Rate        string `json:"rate"`
	Kind        string `json:"kind"`
	Capacity    int    `json:"capacity"`
}

// opportunityResponse は募集情報のAPIレスポンス。
type opportunityResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	FamilyName  string    `json:"family_name"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Schedule    string    `json:"schedule"`
	Rate        string    `json:"rate"`
	Kind        string    `json:"kind"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	AcceptedBy  string    `json:"accepted_by,omitempty"`
	RSVPCount   int       `json:"rsvp_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// rsvpResponse は参加申込のAPIレスポンス。
type rsvpResponse struct {
	ID            string    `json:"id"`
	OpportunityID string    `json:"opportunity_id"`
	AttendeeID    string    `json:"attendee_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// rsvpCountResponse は参加申込数のAPIレスポンス。
type rsvpCountResponse struct {
	Count int `json:"count"`
}

// Create は募集を作成する。
// POST /api/opportunities
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createOpportunityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	opp, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, opp)
}

// ListAll は全募集の一覧を返す。
// GET /api/opportunities
func (h *OpportunityHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	opps, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opps)
}

// ListOwn はログインユーザーが掲載した募集の一覧を返す。
// GET /api/opportunities/mine
func (h *OpportunityHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	opps, err := h.service.ListOwn(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opps)
}

// Accept はジョブを予約する。
// POST /api/opportunities/{ownerID}/{opportunityID}/accept
func (h *OpportunityHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	opp, err := h.service.Accept(r.Context(), userID, chi.URLParam(r, "ownerID"), chi.URLParam(r, "opportunityID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

// Close は募集を終了する。
// POST /api/opportunities/{ownerID}/{opportunityID}/close
func (h *OpportunityHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	opp, err := h.service.Close(r.Context(), userID, chi.URLParam(r, "ownerID"), chi.URLParam(r, "opportunityID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

// RSVP はイベントに参加申込する。
// POST /api/opportunities/{ownerID}/{opportunityID}/rsvps
func (h *OpportunityHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rsvp, err := h.service.RSVP(r.Context(), userID, chi.URLParam(r, "ownerID"), chi.URLParam(r, "opportunityID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rsvp)
}

// CountRSVPs は参加申込数を返す。
// GET /api/opportunities/{ownerID}/{opportunityID}/rsvps/count
func (h *OpportunityHandler) CountRSVPs(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountRSVPs(r.Context(), chi.URLParam(r, "ownerID"), chi.URLParam(r, "opportunityID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvpCountResponse{Count: count})
}
