package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// マーチャント側の注文操作（一覧とステータス遷移）。
// キャンセルは客側の操作なのでここには無い。
type MerchantOrderUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewMerchantOrderUsecase(tx repo.TransactionManager, log *zap.Logger) *MerchantOrderUsecase {
	return &MerchantOrderUsecase{tx: tx, log: log}
}

type UpdateOrderStatusInput struct {
	Status         string
	TrackingNumber string
	Notes          string
}

// 自分宛の注文一覧
func (u *MerchantOrderUsecase) List(ctx context.Context, merchantID int64, role model.Role, page int, limit int) ([]OrderOutput, error) {
	if merchantID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if role != model.RoleMerchant && role != model.RoleAdmin {
		return []OrderOutput{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}
	if page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByMerchantID(ctx, merchantID, page, limit)
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

// ステータス遷移。状態機械に無い遷移は409。
// SHIPPED への遷移で引当を確定し、実在庫がここで減る。
func (u *MerchantOrderUsecase) UpdateStatus(ctx context.Context, actorID int64, role model.Role, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if actorID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	next := model.OrderStatus(strings.TrimSpace(in.Status))
	switch next {
	case model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusRefunded:
		// OK（CANCELLED は客のキャンセル操作のみ）
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid status")
	}

	tracking := strings.TrimSpace(in.TrackingNumber)
	if next == model.OrderStatusShipped && tracking == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "tracking_number is required")
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

		//自分の注文か（管理者は全部）
		if role != model.RoleAdmin && !(role == model.RoleMerchant && o.MerchantID == actorID) {
			return NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
		}

		if !o.Status.CanTransitionTo(next) {
			return NewHTTPError(http.StatusConflict, CodeConflict, "invalid status transition")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		//出荷＝引当の確定（ここで実在庫が減る）
		if next == model.OrderStatusShipped {
			if err := u.confirmReservations(ctx, r, o, items, actorID); err != nil {
				return err
			}
		}

		upd := repo.OrderUpdate{Status: &next}
		if next == model.OrderStatusShipped {
			upd.TrackingNumber = &tracking
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			upd.Notes = &notes
		}
		//返金はpayment_statusも対で動かす
		if next == model.OrderStatusRefunded {
			refunded := model.PaymentStatusRefunded
			upd.PaymentStatus = &refunded
		}

		if err := r.Orders().Update(ctx, orderID, upd); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		o.Status = next
		if upd.TrackingNumber != nil {
			o.TrackingNumber = *upd.TrackingNumber
		}
		if upd.Notes != nil {
			o.Notes = *upd.Notes
		}
		if upd.PaymentStatus != nil {
			o.PaymentStatus = *upd.PaymentStatus
		}
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *MerchantOrderUsecase) confirmReservations(ctx context.Context, r repo.TxRepos, o model.Order, items []model.OrderItem, actorID int64) error {
	ref := repo.InventoryLogRef{
		ReferenceID:   &o.ID,
		ReferenceType: "order",
		ActorID:       actorID,
		Notes:         "order shipped",
	}

	for _, it := range items {
		inv, err := r.Inventory().FindByKey(ctx, it.ProductID, o.MerchantID, it.VariantID)
		if err == repo.ErrNotFound {
			u.log.Error("inventory record missing on ship",
				zap.Int64("order_id", o.ID),
				zap.Int64("product_id", it.ProductID),
			)
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "inventory error")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		ok, err := r.Inventory().ConfirmReservation(ctx, inv.ID, it.Quantity, ref)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		if !ok {
			u.log.Error("reservation missing on ship",
				zap.Int64("order_id", o.ID),
				zap.Int64("inventory_id", inv.ID),
				zap.Int64("qty", it.Quantity),
			)
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "inventory error")
		}
	}

	return nil
}
