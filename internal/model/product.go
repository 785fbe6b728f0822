package model

// ProductVariant は商品バリアントのダッシュボード表示用データ。
type ProductVariant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku"`
}

// ProductMetafield は商品メタフィールド（internalネームスペース）のキーと値。
type ProductMetafield struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product はAdmin GraphQL APIから取得した商品をedges/nodeのラップを
// 1段階外して平坦化した表示用データ。
type Product struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Handle     string             `json:"handle"`
	Status     string             `json:"status"`
	Variants   []ProductVariant   `json:"variants"`
	Metafields []ProductMetafield `json:"metafields"`
	UpdatedAt  string             `json:"updatedAt"`
}
