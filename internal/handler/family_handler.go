package handler

import (
	"context"
	"net/http"
	"time"
)

// FamilyServiceInterface はファミリーハンドラーが必要とするサービスインターフェース。
type FamilyServiceInterface interface {
	// Dashboard はファミリーを必要に応じて作成し、メンバーと自分の募集とともに返す。
	Dashboard(ctx context.Context, userID string) (*dashboardResponse, error)
	// UpdateFamily はファミリープロフィールを部分更新する。
	UpdateFamily(ctx context.Context, userID string, req updateFamilyRequest) (*familyResponse, error)
	// AddMember はファミリーにメンバーを追加する。
	AddMember(ctx context.Context, userID string, req addMemberRequest) (*memberResponse, error)
}

// FamilyHandler はログインユーザー自身のファミリーを扱うHTTPハンドラー。
type FamilyHandler struct {
	service FamilyServiceInterface
}

// NewFamilyHandler はFamilyHandlerを生成する。
func NewFamilyHandler(service FamilyServiceInterface) *FamilyHandler {
	return &FamilyHandler{service: service}
}

// updateFamilyRequest はファミリー更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateFamilyRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	IsPublic *bool   `json:"is_public"`
}

// addMemberRequest はメンバー追加リクエストのボディ。
type addMemberRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Age      string `json:"age"`
	Bio      string `json:"bio"`
	IsPublic bool   `json:"is_public"`
}

// familyResponse はファミリー情報のAPIレスポンス。
type familyResponse struct {
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	IsPublic  bool      `json:"is_public"`
	UpdatedAt time.Time `json:"updated_at"`
}

// memberResponse はメンバー情報のAPIレスポンス。
type memberResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Age       string    `json:"age"`
	Bio       string    `json:"bio"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// dashboardResponse はダッシュボードのAPIレスポンス。
type dashboardResponse struct {
	Family        familyResponse        `json:"family"`
	Members       []memberResponse      `json:"members"`
	Opportunities []opportunityResponse `json:"opportunities"`
}

// Dashboard はログインユーザーのダッシュボードを返す。
// GET /api/dashboard
func (h *FamilyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// UpdateFamily はファミリープロフィールを更新する。
// PUT /api/family
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateFamilyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.service.UpdateFamily(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, family)
}

// AddMember はメンバーを追加する。
// POST /api/family/members
func (h *FamilyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := h.service.AddMember(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}
