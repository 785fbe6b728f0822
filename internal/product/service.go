// Package product はAdmin GraphQL APIを介した商品取得のファサードを提供する。
package product

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hikaru/fitgate/internal/model"
	"github.com/hikaru/fitgate/internal/repository"
	"github.com/hikaru/fitgate/internal/shopify"
)

// productsQuery は管理画面の商品一覧に使う固定クエリ。
// 直近更新順に20件、バリアント5件、internalネームスペースのメタフィールド10件を取得する。
const productsQuery = `query {
  products(first: 20, sortKey: UPDATED_AT, reverse: true) {
    edges {
      node {
        id
        title
        handle
        status
        updatedAt
        variants(first: 5) {
          edges {
            node {
              id
              title
              sku
            }
          }
        }
        metafields(first: 10, namespace: "internal") {
          edges {
            node {
              key
              value
            }
          }
        }
      }
    }
  }
}`

// productsData はproductsQueryのレスポンス形。
type productsData struct {
	Products struct {
		Edges []struct {
			Node struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				Handle    string `json:"handle"`
				Status    string `json:"status"`
				UpdatedAt string `json:"updatedAt"`
				Variants  struct {
					Edges []struct {
						Node struct {
							ID    string `json:"id"`
							Title string `json:"title"`
							SKU   string `json:"sku"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"variants"`
				Metafields struct {
					Edges []struct {
						Node struct {
							Key   string `json:"key"`
							Value string `json:"value"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"metafields"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// LatencyObserver はGraphQL呼び出しのレイテンシを記録する。
type LatencyObserver interface {
	ObserveGraphQLDuration(d time.Duration)
}

// Service は商品取得サービス。トークンストアからアクセストークンを引き、
// ショップのAdmin GraphQLエンドポイントへ問い合わせる。
type Service struct {
	sessionRepo repository.ShopSessionRepository
	gql         *shopify.GraphQLClient
	observer    LatencyObserver // nil可
}

// NewService はServiceを生成する。observerはnilでもよい。
func NewService(
	sessionRepo repository.ShopSessionRepository,
	gql *shopify.GraphQLClient,
	observer LatencyObserver,
) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		gql:         gql,
		observer:    observer,
	}
}

// ListProducts は指定ショップの商品一覧をフラットな形で返す。
// トークン未保存のショップの場合はGraphQLを呼ばずにauthカテゴリの
// *model.APIErrorを返す。
func (s *Service) ListProducts(ctx context.Context, shop string) ([]model.Product, error) {
	normalized := shopify.NormalizeShopDomain(shop)
	if normalized == "" {
		return nil, model.NewMissingShopError()
	}
	if !shopify.IsValidShopDomain(normalized) {
		return nil, model.NewInvalidShopError(normalized)
	}

	session, err := s.sessionRepo.FindByShop(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop session: %w", err)
	}
	if session == nil {
		return nil, model.NewShopNotInstalledError(normalized)
	}

	start := time.Now()
	resp, err := shopify.PostGraphQL[productsData](ctx, s.gql, normalized, session.AccessToken, productsQuery, nil)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveGraphQLDuration(elapsed)
	}
	if err != nil {
		return nil, fmt.Errorf("graphql call failed: %w", err)
	}

	if len(resp.Errors) > 0 {
		slog.Error("graphql returned errors",
			slog.String("shop", normalized),
			slog.Any("errors", resp.Errors),
		)
		return nil, model.NewUpstreamGraphQLError(resp.Errors[0].Message)
	}

	products := make([]model.Product, 0, len(resp.Data.Products.Edges))
	for _, edge := range resp.Data.Products.Edges {
		node := edge.Node

		variants := make([]model.ProductVariant, 0, len(node.Variants.Edges))
		for _, v := range node.Variants.Edges {
			variants = append(variants, model.ProductVariant{
				ID:    v.Node.ID,
				Title: v.Node.Title,
				SKU:   v.Node.SKU,
			})
		}

		metafields := make([]model.ProductMetafield, 0, len(node.Metafields.Edges))
		for _, m := range node.Metafields.Edges {
			metafields = append(metafields, model.ProductMetafield{
				Key:   m.Node.Key,
				Value: m.Node.Value,
			})
		}

		products = append(products, model.Product{
			ID:         node.ID,
			Title:      node.Title,
			Handle:     node.Handle,
			Status:     node.Status,
			Variants:   variants,
			Metafields: metafields,
			UpdatedAt:  node.UpdatedAt,
		})
	}

	slog.Info("products fetched",
		slog.String("shop", normalized),
		slog.Int("count", len(products)),
		slog.Duration("elapsed", elapsed),
	)

	return products, nil
}
