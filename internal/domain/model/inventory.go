package model

import "time"

// 在庫レコード。(product_id, merchant_id, variant_id) で1行。
// quantity は実在庫、reserved_quantity は未確定注文の引当。
// 0 ≤ reserved_quantity ≤ quantity を常に保つ。
type Inventory struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID        int64     `gorm:"not null;uniqueIndex:idx_inventory_key" json:"product_id"`
	MerchantID       int64     `gorm:"not null;uniqueIndex:idx_inventory_key;index" json:"merchant_id"`
	VariantID        *int64    `gorm:"uniqueIndex:idx_inventory_key" json:"variant_id,omitempty"`
	Quantity         int64     `gorm:"not null;default:0" json:"quantity"`
	ReservedQuantity int64     `gorm:"not null;default:0" json:"reserved_quantity"`
	ReorderLevel     int64     `gorm:"not null;default:10" json:"reorder_level"`
	ReorderQuantity  int64     `gorm:"not null;default:50" json:"reorder_quantity"`
	Location         string    `gorm:"type:varchar(100)" json:"location,omitempty"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 引当可能数
func (i Inventory) AvailableQuantity() int64 {
	return i.Quantity - i.ReservedQuantity
}

// 発注点を割っているか
func (i Inventory) NeedsReorder() bool {
	return i.AvailableQuantity() <= i.ReorderLevel
}
