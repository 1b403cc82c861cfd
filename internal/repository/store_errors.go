package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/rentafamily/internal/model"
)

// PostgreSQLのSQLSTATE
const (
	pqCodeUniqueViolation       = "23505"
	pqCodeInsufficientPrivilege = "42501"
	pqClassInvalidAuthorization = "28"
)

// classifyStoreError はドライバのエラーをストア障害の種類に分類する。
// 権限不足・認証失敗はErrPermissionDenied、それ以外はErrStoreUnavailableとする。
func classifyStoreError(err error) error {
	if errors.Is(err, model.ErrPermissionDenied) || errors.Is(err, model.ErrStoreUnavailable) {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqCodeInsufficientPrivilege || string(pqErr.Code.Class()) == pqClassInvalidAuthorization {
			return model.ErrPermissionDenied
		}
	}
	return model.ErrStoreUnavailable
}

// storeError は操作名とともにドライバのエラーと分類結果の両方をラップする。
func storeError(op string, err error) error {
	kind := classifyStoreError(err)
	if kind == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// isUniqueViolation は一意制約違反であるかを返す。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqCodeUniqueViolation
}
