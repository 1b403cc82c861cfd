// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザーが入力した自由記述（自己紹介、募集の説明など）から
// HTMLマークアップを除去し、プレーンテキストとして保存できる形に整える。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は自由記述テキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// SanitizeText は全てのHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	// script, styleタグは中身ごと除去する。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerの実装。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はbluemondayのStrictPolicyを用いるTextSanitizerを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxDecodePasses は文字参照の多重エンコードを展開する最大回数。
const maxDecodePasses = 8

// SanitizeText はタグを除去したプレーンテキストを返す。
// 文字参照でエンコードされたマークアップも展開してから除去し、
// 出力が変化しなくなるまで繰り返す。最後に文字参照を元の文字に戻す。
// maxDecodePasses回で収束しない入力は空文字列とする。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	out := raw
	for i := 0; i < maxDecodePasses; i++ {
		next := s.policy.Sanitize(html.UnescapeString(out))
		if next == out {
			return strings.TrimSpace(html.UnescapeString(out))
		}
		out = next
	}
	return ""
}
