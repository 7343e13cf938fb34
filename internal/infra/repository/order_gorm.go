package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	return r.list(ctx, "user_id = ?", userID, page, limit)
}

func (r *OrderGormRepository) ListByMerchantID(ctx context.Context, merchantID int64, page int, limit int) ([]model.Order, int64, error) {
	return r.list(ctx, "merchant_id = ?", merchantID, page, limit)
}

func (r *OrderGormRepository) list(ctx context.Context, cond string, id int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where(cond, id).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

// 更新できるのは status/payment_status/tracking_number/notes のみ。
// 合計金額と注文の同一性は作成後に変えない。
func (r *OrderGormRepository) Update(ctx context.Context, orderID int64, upd repo.OrderUpdate) error {
	values := map[string]interface{}{}
	if upd.Status != nil {
		values["status"] = *upd.Status
	}
	if upd.PaymentStatus != nil {
		values["payment_status"] = *upd.PaymentStatus
	}
	if upd.TrackingNumber != nil {
		values["tracking_number"] = *upd.TrackingNumber
	}
	if upd.Notes != nil {
		values["notes"] = *upd.Notes
	}
	if len(values) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
