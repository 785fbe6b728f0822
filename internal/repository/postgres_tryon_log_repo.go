package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hikaru/fitgate/internal/model"
)

// PostgresTryOnLogRepo はPostgreSQLを使用した試着イベントリポジトリ。
type PostgresTryOnLogRepo struct {
	db *sql.DB
}

// NewPostgresTryOnLogRepo はPostgresTryOnLogRepoを生成する。
func NewPostgresTryOnLogRepo(db *sql.DB) *PostgresTryOnLogRepo {
	return &PostgresTryOnLogRepo{db: db}
}

// Create は試着イベントを追記する。metadataはJSONBとして保存する。
func (r *PostgresTryOnLogRepo) Create(ctx context.Context, log *model.TryOnLog) error {
	var metadata []byte
	if log.Metadata != nil {
		b, err := json.Marshal(log.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata = b
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tryon_logs (id, shop, product_id, external_id, variant_id, customer_id, action, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		log.ID, log.Shop, log.ProductID,
		nullable(log.ExternalID), nullable(log.VariantID), nullable(log.CustomerID),
		log.Action, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create tryon log: %w", err)
	}
	return nil
}

// ListByShop は指定ショップの試着イベントを新しい順に取得する。
func (r *PostgresTryOnLogRepo) ListByShop(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, shop, product_id, external_id, variant_id, customer_id, action, metadata, created_at
		 FROM tryon_logs
		 WHERE shop = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		shop, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tryon logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.TryOnLog
	for rows.Next() {
		log := &model.TryOnLog{}
		var externalID, variantID, customerID sql.NullString
		var metadata []byte

		if err := rows.Scan(
			&log.ID, &log.Shop, &log.ProductID,
			&externalID, &variantID, &customerID,
			&log.Action, &metadata, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tryon log: %w", err)
		}

		log.ExternalID = externalID.String
		log.VariantID = variantID.String
		log.CustomerID = customerID.String

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &log.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tryon logs: %w", err)
	}

	return logs, nil
}

// nullable は空文字列をNULLとして保存するための変換を行う。
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ TryOnLogRepository = (*PostgresTryOnLogRepo)(nil)
