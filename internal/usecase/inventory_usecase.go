package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// マーチャント向けの在庫操作。
// 引当/解放/確定は注文フロー側からしか呼ばれない。ここは入庫と参照だけ。
type InventoryUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
}

func NewInventoryUsecase(productRepo repo.ProductRepository, inventoryRepo repo.InventoryRepository) *InventoryUsecase {
	return &InventoryUsecase{productRepo: productRepo, inventoryRepo: inventoryRepo}
}

type AddStockInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int64
	Location  string
}

type InventoryOutput struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	MerchantID        int64  `json:"merchant_id"`
	VariantID         *int64 `json:"variant_id,omitempty"`
	Quantity          int64  `json:"quantity"`
	ReservedQuantity  int64  `json:"reserved_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
	ReorderLevel      int64  `json:"reorder_level"`
	ReorderQuantity   int64  `json:"reorder_quantity"`
	Location          string `json:"location,omitempty"`
	NeedsReorder      bool   `json:"needs_reorder"`
}

// 入庫。自分の商品にだけ入れられる（管理者は例外）。
// 最初の入庫で在庫レコードができる。
func (u *InventoryUsecase) AddStock(ctx context.Context, actorID int64, role model.Role, in AddStockInput) (InventoryOutput, error) {
	if actorID <= 0 {
		return InventoryOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if role != model.RoleMerchant && role != model.RoleAdmin {
		return InventoryOutput{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}
	if in.ProductID <= 0 {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid product_id")
	}
	if in.Quantity < 1 {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return InventoryOutput{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}
	if err != nil {
		return InventoryOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}
	if role != model.RoleAdmin && p.MerchantID != actorID {
		return InventoryOutput{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}

	inv, err := u.inventoryRepo.FindByKey(ctx, in.ProductID, p.MerchantID, in.VariantID)
	if err == repo.ErrNotFound {
		inv, err = u.inventoryRepo.Create(ctx, model.Inventory{
			ProductID:  in.ProductID,
			MerchantID: p.MerchantID,
			VariantID:  in.VariantID,
			Location:   strings.TrimSpace(in.Location),
			//reorder_level / reorder_quantity はモデルのデフォルト
		})
		if err != nil {
			return InventoryOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
	} else if err != nil {
		return InventoryOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	ref := repo.InventoryLogRef{
		ActorID: actorID,
		Notes:   "stock received",
	}
	if err := u.inventoryRepo.AddStock(ctx, inv.ID, in.Quantity, ref); err != nil {
		return InventoryOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	inv, err = u.inventoryRepo.FindByID(ctx, inv.ID)
	if err != nil {
		return InventoryOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	return toInventoryOutput(inv), nil
}

// 自分の在庫一覧
func (u *InventoryUsecase) List(ctx context.Context, actorID int64, role model.Role) ([]InventoryOutput, error) {
	if actorID <= 0 {
		return []InventoryOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if role != model.RoleMerchant && role != model.RoleAdmin {
		return []InventoryOutput{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}

	items, err := u.inventoryRepo.ListByMerchantID(ctx, actorID)
	if err != nil {
		return []InventoryOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	outs := make([]InventoryOutput, 0, len(items))
	for _, inv := range items {
		outs = append(outs, toInventoryOutput(inv))
	}
	return outs, nil
}

// 変動履歴（所有チェック付き、新しい順）
func (u *InventoryUsecase) ListLogs(ctx context.Context, actorID int64, role model.Role, inventoryID int64) ([]model.InventoryLog, error) {
	if actorID <= 0 {
		return []model.InventoryLog{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if role != model.RoleMerchant && role != model.RoleAdmin {
		return []model.InventoryLog{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}
	if inventoryID <= 0 {
		return []model.InventoryLog{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	inv, err := u.inventoryRepo.FindByID(ctx, inventoryID)
	if err == repo.ErrNotFound {
		return []model.InventoryLog{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}
	if err != nil {
		return []model.InventoryLog{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}
	if role != model.RoleAdmin && inv.MerchantID != actorID {
		return []model.InventoryLog{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}

	logs, err := u.inventoryRepo.ListLogs(ctx, inventoryID)
	if err != nil {
		return []model.InventoryLog{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}
	return logs, nil
}

func toInventoryOutput(inv model.Inventory) InventoryOutput {
	return InventoryOutput{
		ID:                inv.ID,
		ProductID:         inv.ProductID,
		MerchantID:        inv.MerchantID,
		VariantID:         inv.VariantID,
		Quantity:          inv.Quantity,
		ReservedQuantity:  inv.ReservedQuantity,
		AvailableQuantity: inv.AvailableQuantity(),
		ReorderLevel:      inv.ReorderLevel,
		ReorderQuantity:   inv.ReorderQuantity,
		Location:          inv.Location,
		NeedsReorder:      inv.NeedsReorder(),
	}
}
