package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品はマーチャント所有。在庫数は inventory 側で管理する。
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID  int64          `gorm:"not null;index" json:"merchant_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
