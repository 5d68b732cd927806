// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizerService はミーティングのタイトル・説明などユーザー入力の
// テキストをサニタイズし、格納済みXSSからAPI利用者を保護する。
// bluemondayのStrictPolicyにより全HTMLタグを除去し、プレーンテキストのみを残す。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// ミーティングの作成・更新時に使用される。
type InputSanitizerService interface {
	// Sanitize は入力文字列から全HTMLタグを除去し、前後の空白を取り除いて返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(input string) string
}

// inputSanitizer はInputSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerServiceの新しいインスタンスを生成する。
// タイトルや説明は書式付きHTMLを持つ必要がないため、タグを一切許可しない
// StrictPolicyを使用する。
func NewInputSanitizer() InputSanitizerService {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力文字列から全HTMLタグを除去し、前後の空白を取り除いて返す。
func (s *inputSanitizer) Sanitize(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(input))
}

// compile-time interface check
var _ InputSanitizerService = (*inputSanitizer)(nil)
