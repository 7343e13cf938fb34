package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, log: log}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          int64             `json:"user_id"`
	MerchantID      int64             `json:"merchant_id"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	TotalAmount     int64             `json:"total_amount"`
	ShippingAddress string            `json:"shipping_address"`
	BillingAddress  string            `json:"billing_address"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	TrackingNumber  string            `json:"tracking_number,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}

	//ページングでまずは固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 注文詳細。見られるのは本人・注文先マーチャント・管理者だけ。
func (u *OrderUsecase) GetOrder(ctx context.Context, requesterID int64, role model.Role, orderID int64) (OrderOutput, error) {
	if requesterID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		if !canViewOrder(o, requesterID, role) {
			return NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// キャンセルできるのは注文した本人だけ（マーチャントは不可）。
// DELIVERED は不可。CANCELLED 済みは何もせずそのまま返す（再試行に安全）。
// 出荷前は引当を解放、出荷済みは実在庫を戻す。
func (u *OrderUsecase) Cancel(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		if o.UserID != userID {
			return NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		if o.Status == model.OrderStatusCancelled {
			out = toOrderOutput(o, items)
			return nil
		}
		if !o.Status.CanTransitionTo(model.OrderStatusCancelled) {
			return NewHTTPError(http.StatusConflict, CodeConflict, "order cannot be cancelled")
		}

		if err := u.returnStock(ctx, r, o, items); err != nil {
			return err
		}

		status := model.OrderStatusCancelled
		if err := r.Orders().Update(ctx, orderID, repo.OrderUpdate{Status: &status}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		o.Status = status
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// キャンセル時の在庫戻し。
// 出荷前: 引当解放。出荷済み: 確定減算済みなので入庫で戻す。
func (u *OrderUsecase) returnStock(ctx context.Context, r repo.TxRepos, o model.Order, items []model.OrderItem) error {
	ref := repo.InventoryLogRef{
		ReferenceID:   &o.ID,
		ReferenceType: "order",
		ActorID:       o.UserID,
		Notes:         "order cancelled",
	}

	for _, it := range items {
		inv, err := r.Inventory().FindByKey(ctx, it.ProductID, o.MerchantID, it.VariantID)
		if err == repo.ErrNotFound {
			//在庫レコードが消えている。台帳と注文がズレているので止める。
			u.log.Error("inventory record missing on cancel",
				zap.Int64("order_id", o.ID),
				zap.Int64("product_id", it.ProductID),
			)
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "inventory error")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		if o.Status == model.OrderStatusShipped {
			if err := r.Inventory().AddStock(ctx, inv.ID, it.Quantity, ref); err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
			continue
		}

		ok, err := r.Inventory().ReleaseStock(ctx, inv.ID, it.Quantity, ref)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		if !ok {
			u.log.Error("reservation missing on cancel",
				zap.Int64("order_id", o.ID),
				zap.Int64("inventory_id", inv.ID),
				zap.Int64("qty", it.Quantity),
			)
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "inventory error")
		}
	}

	return nil
}

func canViewOrder(o model.Order, requesterID int64, role model.Role) bool {
	if o.UserID == requesterID {
		return true
	}
	if role == model.RoleAdmin {
		return true
	}
	if role == model.RoleMerchant && o.MerchantID == requesterID {
		return true
	}
	return false
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		MerchantID:      o.MerchantID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
