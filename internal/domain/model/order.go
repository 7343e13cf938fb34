package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// 注文は1マーチャントに1つ。複数マーチャントのカートは注文が複数できる。
// total_amount は明細 subtotal の合計で作成時に確定。
type Order struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	UserID          int64         `gorm:"not null;index" json:"user_id"`
	MerchantID      int64         `gorm:"not null;index" json:"merchant_id"`
	TotalAmount     int64         `gorm:"not null" json:"total_amount"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	ShippingAddress string        `gorm:"type:text;not null" json:"shipping_address"`
	BillingAddress  string        `gorm:"type:text;not null" json:"billing_address"`
	PaymentMethod   string        `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	TrackingNumber  string        `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ステータス遷移の可否。
// PENDING → CONFIRMED → PROCESSING → SHIPPED → DELIVERED が正常系。
// CANCELLED は DELIVERED 前ならどこからでも可。REFUNDED はどこからでも可。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}
	if next == OrderStatusRefunded {
		return true
	}
	if next == OrderStatusCancelled {
		switch s {
		case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped:
			return true
		}
		return false
	}

	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

// 支払いステータス遷移の可否。
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	}
	return false
}
