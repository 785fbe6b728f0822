// Package tryon はストアフロントウィジェットからの試着イベントの記録を提供する。
package tryon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hikaru/fitgate/internal/model"
	"github.com/hikaru/fitgate/internal/repository"
	"github.com/hikaru/fitgate/internal/security"
)

// Event はウィジェットから送信される試着イベントの入力。
type Event struct {
	Shop       string         `json:"shop"`
	ProductID  string         `json:"productId"`
	ExternalID string         `json:"externalId"`
	VariantID  string         `json:"variantId"`
	CustomerID string         `json:"customerId"`
	Action     string         `json:"action"`
	Metadata   map[string]any `json:"metadata"`
}

// Service は試着イベントの検証・サニタイズ・永続化を行う。
// 意図的に重複排除もレート制限も行わない。同一イベントの再送は
// 別IDの別レコードとして記録される。
type Service struct {
	logRepo   repository.TryOnLogRepository
	sanitizer security.EventSanitizerService
}

// NewService はServiceを生成する。
func NewService(logRepo repository.TryOnLogRepository, sanitizer security.EventSanitizerService) *Service {
	return &Service{
		logRepo:   logRepo,
		sanitizer: sanitizer,
	}
}

// Record はイベントを検証して永続化し、採番したIDを返す。
// 必須フィールド（shop, productId, action）が欠けている場合は
// 欠落フィールドをすべて列挙したvalidationエラーを返す。
func (s *Service) Record(ctx context.Context, event *Event) (string, error) {
	var missing []string
	if event.Shop == "" {
		missing = append(missing, "shop")
	}
	if event.ProductID == "" {
		missing = append(missing, "productId")
	}
	if event.Action == "" {
		missing = append(missing, "action")
	}
	if len(missing) > 0 {
		return "", model.NewInvalidEventError(missing)
	}

	log := &model.TryOnLog{
		ID:         uuid.New().String(),
		Shop:       event.Shop,
		ProductID:  event.ProductID,
		ExternalID: event.ExternalID,
		VariantID:  event.VariantID,
		CustomerID: event.CustomerID,
		Action:     s.sanitizer.Sanitize(event.Action),
		Metadata:   s.sanitizer.SanitizeMetadata(event.Metadata),
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		return "", fmt.Errorf("failed to persist try-on event: %w", err)
	}

	slog.Info("try-on event recorded",
		slog.String("id", log.ID),
		slog.String("shop", log.Shop),
		slog.String("product_id", log.ProductID),
		slog.String("action", log.Action),
	)

	return log.ID, nil
}

// ListRecent は指定ショップの試着イベントを新しい順に返す。
// limitが0以下の場合はデフォルトの50件を使用する。
func (s *Service) ListRecent(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error) {
	if shop == "" {
		return nil, model.NewMissingShopError()
	}
	if limit <= 0 {
		limit = 50
	}

	logs, err := s.logRepo.ListByShop(ctx, shop, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list try-on events: %w", err)
	}
	return logs, nil
}
