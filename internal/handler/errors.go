package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/rentafamily/internal/middleware"
	"github.com/hitoshi/rentafamily/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse = middleware.ErrorResponseBody

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 失敗した場合は400を書き込んでfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Request body must be valid JSON."))
		return false
	}
	return true
}

// requireUserID はコンテキストからユーザーIDを取得する。
// 未ログインの場合は401を書き込んでfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return "", false
	}
	return userID, true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外はストア層のセンチネルで分類し、それ以外を内部エラーとする。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	switch {
	case errors.Is(err, model.ErrStoreUnavailable):
		slog.Error("store unavailable", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
	case errors.Is(err, model.ErrPermissionDenied):
		slog.Warn("store permission denied", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewPermissionDeniedError())
	default:
		slog.Error("internal server error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
	}
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeAuthRequired, model.ErrCodeInvalidCredentials, model.ErrCodeOAuthFailed:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodePermissionDenied:
		return http.StatusForbidden
	case model.ErrCodeFamilyNotFound, model.ErrCodeOpportunityNotFound,
		model.ErrCodeProfileNotPublic, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeOwnOpportunity, model.ErrCodeInvalidTransition,
		model.ErrCodeNotAJob, model.ErrCodeNotAnEvent, model.ErrCodeEventFull, model.ErrCodeDuplicateRSVP:
		return http.StatusConflict
	case model.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
