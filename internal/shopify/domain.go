// Package shopify はShopify Admin APIとの通信機能を提供する。
package shopify

import "strings"

// NormalizeShopDomain はshopパラメータを小文字・前後空白除去で正規化する。
func NormalizeShopDomain(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}

// IsValidShopDomain はショップドメインが *.myshopify.com 形式かを検証する。
// パス区切りや空白を含むドメインは、外向きURLの組み立てに使用できないため拒否する。
func IsValidShopDomain(shop string) bool {
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return false
	}
	if strings.Contains(shop, "/") || strings.Contains(shop, " ") {
		return false
	}
	return len(shop) >= len("a.myshopify.com")
}
