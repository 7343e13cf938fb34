package repository

import (
	"app/internal/domain/model"
	"context"
)

// 在庫ログに残す参照（引き金になった注文/カートなど）
type InventoryLogRef struct {
	ReferenceID   *int64
	ReferenceType string
	ActorID       int64
	Notes         string
}

// 在庫の引当/解放/確定は全て条件付きUPDATE1文で行う（read-then-write禁止）。
// ok=false は在庫不足・引当超過で、エラーではなく業務上の失敗。
// 変動は必ず inventory_logs に1行追記される。
type InventoryRepository interface {
	FindByKey(ctx context.Context, productID int64, merchantID int64, variantID *int64) (model.Inventory, error)
	FindByID(ctx context.Context, inventoryID int64) (model.Inventory, error)
	ListByMerchantID(ctx context.Context, merchantID int64) ([]model.Inventory, error)
	Create(ctx context.Context, inv model.Inventory) (model.Inventory, error)

	// 入庫: quantity += qty
	AddStock(ctx context.Context, inventoryID int64, qty int64, ref InventoryLogRef) error

	// 引当: available >= qty のときだけ reserved += qty
	ReserveStock(ctx context.Context, inventoryID int64, qty int64, ref InventoryLogRef) (bool, error)

	// 引当解放: reserved >= qty のときだけ reserved -= qty
	ReleaseStock(ctx context.Context, inventoryID int64, qty int64, ref InventoryLogRef) (bool, error)

	// 引当確定（出荷）: reserved >= qty のときだけ reserved -= qty かつ quantity -= qty
	ConfirmReservation(ctx context.Context, inventoryID int64, qty int64, ref InventoryLogRef) (bool, error)

	// 引当を介さない直接減算: available >= qty のときだけ quantity -= qty
	DeductStock(ctx context.Context, inventoryID int64, qty int64, ref InventoryLogRef) (bool, error)

	// 変動履歴（新しい順）
	ListLogs(ctx context.Context, inventoryID int64) ([]model.InventoryLog, error)
}
