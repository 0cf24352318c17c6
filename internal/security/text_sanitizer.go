// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は利用者が入力した自由記述（メッセージ本文、予約の目的・連絡事項）から
// HTMLマークアップを除去し、プレーンテキストとして保存できる形にする。
// bluemondayのStrictPolicyで全タグを除去したうえで文字参照を元に戻す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト化のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize は全てのHTMLタグを除去したプレーンテキストを返す。
	// script, style要素は中身ごと除去する。前後の空白は取り除く。
	// "use <b> for bold"のようなタグに見える文字列も除去するため、保存内容が入力と異なる場合がある。
	// 出力はプレーンテキストであり、表示側でのエスケープが前提。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーは並行利用できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
