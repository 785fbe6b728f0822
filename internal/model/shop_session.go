// Package model はドメインモデルを定義する。
package model

import "time"

// ShopSession はショップ（テナント）ごとのオフラインアクセストークンを表す。
// shopをユニークキーとして1ショップにつき最大1レコードを保持し、
// 再インストール時はUPSERTで上書きされる。
type ShopSession struct {
	Shop        string // ショップドメイン（例: "test-store.myshopify.com"）
	AccessToken string // Admin APIアクセストークン（秘密情報）
	Scope       string // カンマ区切りの許可スコープ
	IsOnline    bool   // オンライントークンか。本システムはofflineのみ保存する
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
