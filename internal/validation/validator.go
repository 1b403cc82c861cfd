// Package validation は構造体タグによる入力検証をAPIErrorに変換する。
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hitoshi/rentafamily/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Messages は検証失敗時のユーザー向けメッセージ。
// キーは "Field.tag"、"Field"、"*" の順に参照する。
type Messages map[string]string

// Struct はvalidateタグに従ってsを検証する。
// 最初に失敗したフィールドに対応するメッセージでValidationErrorを返す。
func Struct(s any, messages Messages) *model.APIError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewValidationError("Invalid input.")
	}

	fe := verrs[0]
	for _, key := range []string{fe.Field() + "." + fe.Tag(), fe.Field(), "*"} {
		if msg, ok := messages[key]; ok {
			return model.NewValidationError(msg)
		}
	}
	return model.NewValidationError(fmt.Sprintf("%s is invalid.", strings.ToLower(fe.Field())))
}

// IsUUID はsがUUID形式であるかを返す。
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
