package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// (product, merchant, variant) で1件取得
func (r *InventoryGormRepository) FindByKey(ctx context.Context, productID int64, merchantID int64, variantID *int64) (model.Inventory, error) {
	var inv model.Inventory

	q := r.db.WithContext(ctx).
		Where("product_id = ? AND merchant_id = ?", productID, merchantID)
	if variantID == nil {
		q = q.Where("variant_id IS NULL")
	} else {
		q = q.Where("variant_id = ?", *variantID)
	}

	err := q.First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

func (r *InventoryGormRepository) FindByID(ctx context.Context, inventoryID int64) (model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).First(&inv, inventoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// マーチャントの在庫一覧
func (r *InventoryGormRepository) ListByMerchantID(ctx context.Context, merchantID int64) ([]model.Inventory, error) {
	var items []model.Inventory
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Inventory{}, err
	}
	return items, nil
}

func (r *InventoryGormRepository) Create(ctx context.Context, inv model.Inventory) (model.Inventory, error) {
	if err := r.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// 入庫: quantity += qty
func (r *InventoryGormRepository) AddStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) error {
	if qty <= 0 {
		return errors.New("invalid amount")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inventory{}).
			Where("id = ?", inventoryID).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		return appendLog(tx, inventoryID, model.InventoryLogTypeAdd, qty, ref, func(inv model.Inventory) (int64, int64) {
			return inv.Quantity - qty, inv.Quantity
		})
	})
}

// 引当: available >= qty のときだけ reserved += qty
func (r *InventoryGormRepository) ReserveStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	if qty <= 0 {
		return false, errors.New("invalid amount")
	}

	ok := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inventory{}).
			Where("id = ? AND quantity - reserved_quantity >= ?", inventoryID, qty).
			Update("reserved_quantity", gorm.Expr("reserved_quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			//在庫不足（またはレコード無し）
			return nil
		}
		ok = true

		return appendLog(tx, inventoryID, model.InventoryLogTypeReserve, qty, ref, func(inv model.Inventory) (int64, int64) {
			return inv.ReservedQuantity - qty, inv.ReservedQuantity
		})
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// 引当解放: reserved >= qty のときだけ reserved -= qty
func (r *InventoryGormRepository) ReleaseStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	if qty <= 0 {
		return false, errors.New("invalid amount")
	}

	ok := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inventory{}).
			Where("id = ? AND reserved_quantity >= ?", inventoryID, qty).
			Update("reserved_quantity", gorm.Expr("reserved_quantity - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			//引当超過
			return nil
		}
		ok = true

		return appendLog(tx, inventoryID, model.InventoryLogTypeRelease, qty, ref, func(inv model.Inventory) (int64, int64) {
			return inv.ReservedQuantity + qty, inv.ReservedQuantity
		})
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// 引当確定（出荷）: reserved >= qty のときだけ reserved -= qty かつ quantity -= qty
func (r *InventoryGormRepository) ConfirmReservation(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	if qty <= 0 {
		return false, errors.New("invalid amount")
	}

	ok := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inventory{}).
			Where("id = ? AND reserved_quantity >= ?", inventoryID, qty).
			Updates(map[string]interface{}{
				"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
				"quantity":          gorm.Expr("quantity - ?", qty),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		ok = true

		return appendLog(tx, inventoryID, model.InventoryLogTypeDeduct, qty, ref, func(inv model.Inventory) (int64, int64) {
			return inv.Quantity + qty, inv.Quantity
		})
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// 引当を介さない直接減算: available >= qty のときだけ quantity -= qty
func (r *InventoryGormRepository) DeductStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	if qty <= 0 {
		return false, errors.New("invalid amount")
	}

	ok := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inventory{}).
			Where("id = ? AND quantity - reserved_quantity >= ?", inventoryID, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		ok = true

		return appendLog(tx, inventoryID, model.InventoryLogTypeDeduct, qty, ref, func(inv model.Inventory) (int64, int64) {
			return inv.Quantity + qty, inv.Quantity
		})
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// 変動履歴（新しい順）
func (r *InventoryGormRepository) ListLogs(ctx context.Context, inventoryID int64) ([]model.InventoryLog, error) {
	var logs []model.InventoryLog
	err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id desc").
		Find(&logs).Error
	if err != nil {
		return []model.InventoryLog{}, err
	}
	return logs, nil
}

// 更新後の行を読み直してログを1行追記する。
// beforeAfter は更新後の行から（前値, 後値）を作る。
func appendLog(tx *gorm.DB, inventoryID int64, typ model.InventoryLogType, qty int64, ref repo.InventoryLogRef, beforeAfter func(inv model.Inventory) (int64, int64)) error {
	var inv model.Inventory
	if err := tx.First(&inv, inventoryID).Error; err != nil {
		return err
	}

	prev, next := beforeAfter(inv)
	log := model.InventoryLog{
		InventoryID:      inventoryID,
		Type:             typ,
		Quantity:         qty,
		PreviousQuantity: prev,
		NewQuantity:      next,
		ReferenceID:      ref.ReferenceID,
		ReferenceType:    ref.ReferenceType,
		Notes:            ref.Notes,
		CreatedBy:        ref.ActorID,
	}
	return tx.Create(&log).Error
}
