package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hikaru/fitgate/internal/model"
)

// PostgresShopSessionRepo はPostgreSQLを使用したショップセッションリポジトリ。
type PostgresShopSessionRepo struct {
	db *sql.DB
}

// NewPostgresShopSessionRepo はPostgresShopSessionRepoを生成する。
func NewPostgresShopSessionRepo(db *sql.DB) *PostgresShopSessionRepo {
	return &PostgresShopSessionRepo{db: db}
}

// Upsert はショップセッションを冪等にUPSERTする。
// ON CONFLICTによる単一ステートメントのため、読み手からは旧行か新行の
// いずれかのみが観測される（last-write-wins）。
func (r *PostgresShopSessionRepo) Upsert(ctx context.Context, session *model.ShopSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shop_sessions (shop, access_token, scope, is_online, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (shop) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     scope        = EXCLUDED.scope,
		     is_online    = EXCLUDED.is_online,
		     updated_at   = now()`,
		session.Shop, session.AccessToken, session.Scope, session.IsOnline,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert shop session: %w", err)
	}
	return nil
}

// FindByShop は指定ショップのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresShopSessionRepo) FindByShop(ctx context.Context, shop string) (*model.ShopSession, error) {
	session := &model.ShopSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT shop, access_token, scope, is_online, created_at, updated_at
		 FROM shop_sessions
		 WHERE shop = $1`,
		shop,
	).Scan(
		&session.Shop, &session.AccessToken, &session.Scope,
		&session.IsOnline, &session.CreatedAt, &session.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shop session: %w", err)
	}

	return session, nil
}

// compile-time interface check
var _ ShopSessionRepository = (*PostgresShopSessionRepo)(nil)
