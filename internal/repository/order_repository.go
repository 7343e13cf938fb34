package repository

import (
	"context"

	"app/internal/domain/model"
)

// 作成後に更新できるのは status/payment_status/tracking_number/notes のみ。
type OrderUpdate struct {
	Status         *model.OrderStatus
	PaymentStatus  *model.PaymentStatus
	TrackingNumber *string
	Notes          *string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListByMerchantID(ctx context.Context, merchantID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	Update(ctx context.Context, orderID int64, upd OrderUpdate) error
}
