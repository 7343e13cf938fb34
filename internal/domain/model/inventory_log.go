package model

import "time"

type InventoryLogType string

const (
	InventoryLogTypeAdd        InventoryLogType = "add"
	InventoryLogTypeDeduct     InventoryLogType = "deduct"
	InventoryLogTypeReserve    InventoryLogType = "reserve"
	InventoryLogTypeRelease    InventoryLogType = "release"
	InventoryLogTypeAdjustment InventoryLogType = "adjustment"
)

// 在庫変動の追記専用ログ。全ての変動が1行ずつ残る（監査用）。
// previous/new は変動したカウンタの前後値
// （add/deduct/adjustment は quantity、reserve/release は reserved_quantity）。
type InventoryLog struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	InventoryID      int64            `gorm:"not null;index" json:"inventory_id"`
	Type             InventoryLogType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity         int64            `gorm:"not null" json:"quantity"`
	PreviousQuantity int64            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int64            `gorm:"not null" json:"new_quantity"`
	ReferenceID      *int64           `json:"reference_id,omitempty"`
	ReferenceType    string           `gorm:"type:varchar(30)" json:"reference_type,omitempty"`
	Notes            string           `gorm:"type:varchar(255)" json:"notes,omitempty"`
	CreatedBy        int64            `json:"created_by"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}
