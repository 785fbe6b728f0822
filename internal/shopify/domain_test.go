package shopify

import "testing"

// ショップドメイン検証を検証
func TestIsValidShopDomain(t *testing.T) {
	tests := []struct {
		shop string
		want bool
	}{
		{"test-store.myshopify.com", true},
		{"a.myshopify.com", true},
		{"", false},
		{"example.com", false},
		{"evil.com/..myshopify.com", false},
		{"has space.myshopify.com", false},
		{".myshopify.com", false},
	}

	for _, tt := range tests {
		if got := IsValidShopDomain(tt.shop); got != tt.want {
			t.Errorf("IsValidShopDomain(%q) = %v, want %v", tt.shop, got, tt.want)
		}
	}
}

// 正規化処理を検証
func TestNormalizeShopDomain(t *testing.T) {
	if got := NormalizeShopDomain("  Test-Store.MyShopify.com "); got != "test-store.myshopify.com" {
		t.Errorf("NormalizeShopDomain() = %q", got)
	}
}
