// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hikaru/fitgate/internal/model"
)

// ShopSessionRepository はショップごとのトークン永続化インターフェース。
type ShopSessionRepository interface {
	// Upsert はshopをキーとして冪等にcreate-or-replaceする。
	// 単一ステートメントで実行され、部分的に書き込まれた状態は観測されない。
	Upsert(ctx context.Context, session *model.ShopSession) error

	// FindByShop は指定ショップのセッションを取得する。見つからない場合はnilを返す。
	FindByShop(ctx context.Context, shop string) (*model.ShopSession, error)
}

// TryOnLogRepository は試着イベントの永続化インターフェース。
type TryOnLogRepository interface {
	// Create は試着イベントを追記する。IDは呼び出し側で採番する。
	Create(ctx context.Context, log *model.TryOnLog) error

	// ListByShop は指定ショップの試着イベントを新しい順に取得する。
	ListByShop(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error)
}
