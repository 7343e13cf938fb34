package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// チェックアウト全体の締め切り。超過は通常の失敗と同じく補償解放する。
const checkoutTimeout = 15 * time.Second

// CheckoutUsecase は複数マーチャントのカートを注文に変換する中核。
// 流れ: カート読込 → 商品解決 → マーチャント毎にグループ化
//   → 明細ごとに在庫引当（条件付きUPDATE） → 注文作成（1トランザクション）
//   → カートクリア。
// 途中で失敗したら、その試行で取った引当を全て解放して返す。
// 成功後のカートクリア失敗だけはwarning扱い（注文は返す）。
type CheckoutUsecase struct {
	tx            repo.TransactionManager
	cartRepo      repo.CartRepository
	cartItemRepo  repo.CartItemRepository
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	log           *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:            tx,
		cartRepo:      cartRepo,
		cartItemRepo:  cartItemRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		log:           log,
	}
}

type CheckoutInput struct {
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
}

type CheckoutOutput struct {
	Orders []OrderOutput `json:"orders"`
	// カートクリアのbest-effort失敗のみ。注文は成立している。
	Warning string `json:"warning,omitempty"`
}

// カート明細＋解決済み商品
type checkoutLine struct {
	item    model.CartItem
	product model.Product
}

// マーチャント単位のグループ（登場順を保つ）
type merchantGroup struct {
	merchantID int64
	lines      []checkoutLine
	total      int64
}

// この試行で取った引当（失敗時に逆順で解放する）
type reservation struct {
	inventoryID int64
	qty         int64
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}

	shipping := strings.TrimSpace(in.ShippingAddress)
	if shipping == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "shipping_address is required")
	}
	billing := strings.TrimSpace(in.BillingAddress)
	if billing == "" {
		//省略時は配送先に合わせる（エラーではない）
		billing = shipping
	}

	ctx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	//ACTIVEカート取得
	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, CodeCartNotFound, "cart not found")
	}
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	//カート明細取得
	cartItems, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}
	if len(cartItems) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, CodeEmptyCart, "cart is empty")
	}

	//商品を全件解決してマーチャント毎にグループ化。
	//1件でも欠品/非公開なら何も作らずに失敗（all-or-nothing）。
	groups, err := u.groupByMerchant(ctx, cartItems)
	if err != nil {
		return CheckoutOutput{}, err
	}

	//在庫引当（カート参照でログを残す）
	reserved, err := u.reserveAll(ctx, userID, cart.ID, cartItems, groups)
	if err != nil {
		return CheckoutOutput{}, err
	}

	//注文作成はマーチャント横断で1トランザクション。
	//失敗したら注文は1件も残らないので、引当だけ解放すれば元通り。
	outputs, err := u.createOrders(ctx, userID, groups, shipping, billing, strings.TrimSpace(in.PaymentMethod))
	if err != nil {
		u.releaseAll(ctx, userID, cart.ID, reserved)
		return CheckoutOutput{}, err
	}

	out := CheckoutOutput{Orders: outputs}

	//全注文が成立したときだけカートをクリア。
	//ここの失敗は注文を取り消さない（warningで返す）。
	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		u.log.Warn("cart clear failed after checkout",
			zap.Int64("user_id", userID),
			zap.Int64("cart_id", cart.ID),
			zap.Error(err),
		)
		out.Warning = "orders created but cart could not be cleared"
	}

	return out, nil
}

// 商品解決＋マーチャント毎のグループ化（登場順）
func (u *CheckoutUsecase) groupByMerchant(ctx context.Context, cartItems []model.CartItem) ([]*merchantGroup, error) {
	groups := make([]*merchantGroup, 0, 4)
	index := map[int64]*merchantGroup{}

	for _, ci := range cartItems {
		p, err := u.productRepo.FindByID(ctx, ci.ProductID)
		if err == repo.ErrNotFound {
			return nil, NewHTTPError(http.StatusBadRequest, CodeProductUnavailable, "product is no longer available")
		}
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		if !p.IsActive {
			return nil, NewHTTPError(http.StatusBadRequest, CodeProductUnavailable, "product is no longer available")
		}

		g, ok := index[p.MerchantID]
		if !ok {
			g = &merchantGroup{merchantID: p.MerchantID}
			index[p.MerchantID] = g
			groups = append(groups, g)
		}

		g.lines = append(g.lines, checkoutLine{item: ci, product: p})
		g.total += ci.UnitPriceSnapshot * ci.Quantity
	}

	return groups, nil
}

// 明細ごとに在庫を引き当てる。
// 1件でも足りなければ、ここまでの引当を全部解放して在庫競合で返す。
func (u *CheckoutUsecase) reserveAll(ctx context.Context, userID int64, cartID int64, cartItems []model.CartItem, groups []*merchantGroup) ([]reservation, error) {
	ref := repo.InventoryLogRef{
		ReferenceID:   &cartID,
		ReferenceType: "cart",
		ActorID:       userID,
		Notes:         "checkout reservation",
	}

	reserved := make([]reservation, 0, len(cartItems))

	for _, g := range groups {
		for _, line := range g.lines {
			inv, err := u.inventoryRepo.FindByKey(ctx, line.item.ProductID, g.merchantID, line.item.VariantID)
			if err == repo.ErrNotFound {
				//在庫レコードが無い＝引当可能数0
				u.releaseAll(ctx, userID, cartID, reserved)
				return nil, NewHTTPError(http.StatusConflict, CodeInsufficientStock, "insufficient stock")
			}
			if err != nil {
				u.releaseAll(ctx, userID, cartID, reserved)
				return nil, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}

			ok, err := u.inventoryRepo.ReserveStock(ctx, inv.ID, line.item.Quantity, ref)
			if err != nil {
				u.releaseAll(ctx, userID, cartID, reserved)
				return nil, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
			if !ok {
				u.releaseAll(ctx, userID, cartID, reserved)
				return nil, NewHTTPError(http.StatusConflict, CodeInsufficientStock, "insufficient stock")
			}

			reserved = append(reserved, reservation{inventoryID: inv.ID, qty: line.item.Quantity})
		}
	}

	return reserved, nil
}

// 補償解放。締め切り切れでも解放はやり切りたいので親のキャンセルを切り離す。
func (u *CheckoutUsecase) releaseAll(ctx context.Context, userID int64, cartID int64, reserved []reservation) {
	if len(reserved) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	ref := repo.InventoryLogRef{
		ReferenceID:   &cartID,
		ReferenceType: "cart",
		ActorID:       userID,
		Notes:         "checkout rollback",
	}

	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		ok, err := u.inventoryRepo.ReleaseStock(ctx, r.inventoryID, r.qty, ref)
		if err != nil || !ok {
			u.log.Error("checkout rollback release failed",
				zap.Int64("inventory_id", r.inventoryID),
				zap.Int64("qty", r.qty),
				zap.Bool("ok", ok),
				zap.Error(err),
			)
		}
	}
}

// マーチャント毎の注文＋明細を1トランザクションで作成
func (u *CheckoutUsecase) createOrders(ctx context.Context, userID int64, groups []*merchantGroup, shipping string, billing string, paymentMethod string) ([]OrderOutput, error) {
	var outputs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		outputs = make([]OrderOutput, 0, len(groups))
		now := time.Now()

		for _, g := range groups {
			order := model.Order{
				OrderNumber:     uuid.NewString(),
				UserID:          userID,
				MerchantID:      g.merchantID,
				TotalAmount:     g.total,
				Status:          model.OrderStatusPending,
				PaymentStatus:   model.PaymentStatusPending,
				ShippingAddress: shipping,
				BillingAddress:  billing,
				PaymentMethod:   paymentMethod,
				CreatedAt:       now,
				UpdatedAt:       now,
			}

			orderID, err := r.Orders().Create(ctx, order)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
			order.ID = orderID

			items := make([]model.OrderItem, 0, len(g.lines))
			for _, line := range g.lines {
				items = append(items, model.OrderItem{
					ProductID:           line.item.ProductID,
					VariantID:           line.item.VariantID,
					ProductNameSnapshot: line.product.Name,
					UnitPriceSnapshot:   line.item.UnitPriceSnapshot,
					Quantity:            line.item.Quantity,
					Subtotal:            line.item.UnitPriceSnapshot * line.item.Quantity,
					CreatedAt:           now,
				})
			}

			if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}

			outputs = append(outputs, toOrderOutput(order, items))
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return outputs, nil
}
