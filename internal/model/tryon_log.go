package model

import "time"

// TryOnLog はストアフロントウィジェットから送信される試着イベントを表す。
// 追記専用で、重複排除やレート制限は行わない。
type TryOnLog struct {
	ID         string            // UUID（サーバー側で生成）
	Shop       string            // 必須
	ProductID  string            // 必須
	ExternalID string            // 任意
	VariantID  string            // 任意
	CustomerID string            // 任意
	Action     string            // 必須（例: "open", "capture", "add_to_cart"）
	Metadata   map[string]any    // 任意の非構造化ペイロード（JSONBで保存）
	CreatedAt  time.Time
}
