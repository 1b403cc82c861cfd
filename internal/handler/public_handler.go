package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DirectoryServiceInterface は公開ディレクトリのハンドラーが必要とするサービスインターフェース。
type DirectoryServiceInterface interface {
	ListPublicFamilies(ctx context.Context) ([]familyResponse, error)
	PublicProfile(ctx context.Context, ownerID string) (*profileResponse, error)
	ListFeaturedMembers(ctx context.Context) ([]memberResponse, error)
}

// PublicHandler は未ログインでも閲覧できる公開ディレクトリのHTTPハンドラー。
type PublicHandler struct {
	service DirectoryServiceInterface
}

// NewPublicHandler はPublicHandlerを生成する。
func NewPublicHandler(service DirectoryServiceInterface) *PublicHandler {
	return &PublicHandler{service: service}
}

// profileResponse は公開プロフィールのAPIレスポンス。
// membersには公開メンバーのみを含む。
type profileResponse struct {
	Family  familyResponse   `json:"family"`
	Members []memberResponse `json:"members"`
}

// ListFamilies は公開ファミリーの一覧を返す。
// GET /api/public/families
func (h *PublicHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := h.service.ListPublicFamilies(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, families)
}

// GetProfile は公開ファミリーのプロフィールを返す。
// GET /api/public/families/{ownerID}
func (h *PublicHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.PublicProfile(r.Context(), chi.URLParam(r, "ownerID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ListMembers は注目メンバーの一覧を返す。
// GET /api/public/members
func (h *PublicHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListFeaturedMembers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
