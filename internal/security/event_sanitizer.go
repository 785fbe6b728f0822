// Package security はアプリケーションのセキュリティ機能を提供する。
//
// EventSanitizerService はストアフロントウィジェットから送信される
// 自由記述文字列（action、metadataの文字列値）をサニタイズし、
// 保存データ経由のXSSから管理画面を保護する。
// bluemondayのStrictPolicyにより、HTMLタグはすべて除去される。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// EventSanitizerService はイベント文字列のサニタイズ機能のインターフェースを定義する。
// 試着イベントの保存前に使用される。
type EventSanitizerService interface {
	// Sanitize は入力からHTMLタグをすべて除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string

	// SanitizeMetadata はmetadataの文字列値をすべてサニタイズした
	// 新しいマップを返す。非文字列値はそのまま通過させる。
	SanitizeMetadata(metadata map[string]any) map[string]any
}

// eventSanitizer はEventSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type eventSanitizer struct {
	policy *bluemonday.Policy
}

// NewEventSanitizer はEventSanitizerServiceの新しいインスタンスを生成する。
// ウィジェットのペイロードはHTMLを含む正当な理由がないため、
// 許可タグなしのStrictPolicyを使用する。
func NewEventSanitizer() *eventSanitizer {
	return &eventSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグをすべて除去したプレーンテキストを返す。
func (s *eventSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// SanitizeMetadata はmetadataの文字列値をすべてサニタイズした新しいマップを返す。
func (s *eventSanitizer) SanitizeMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	cleaned := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if str, ok := v.(string); ok {
			cleaned[k] = s.Sanitize(str)
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}
