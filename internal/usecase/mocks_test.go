package usecase_test

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposStub struct {
	OrdersRepo     repo.OrderRepository
	OrderItemsRepo repo.OrderItemRepository
	CartsRepo      repo.CartRepository
	CartItemsRepo  repo.CartItemRepository
	InventoryRepo  repo.InventoryRepository
	ProductsRepo   repo.ProductRepository
}

func (r *TxReposStub) Orders() repo.OrderRepository         { return r.OrdersRepo }
func (r *TxReposStub) OrderItems() repo.OrderItemRepository { return r.OrderItemsRepo }
func (r *TxReposStub) Carts() repo.CartRepository           { return r.CartsRepo }
func (r *TxReposStub) CartItems() repo.CartItemRepository   { return r.CartItemsRepo }
func (r *TxReposStub) Inventory() repo.InventoryRepository  { return r.InventoryRepo }
func (r *TxReposStub) Products() repo.ProductRepository     { return r.ProductsRepo }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	total, _ := args.Get(1).(int64)
	return orders, total, args.Error(2)
}

func (m *OrderRepoMock) ListByMerchantID(ctx context.Context, merchantID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, merchantID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	total, _ := args.Get(1).(int64)
	return orders, total, args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *OrderRepoMock) Update(ctx context.Context, orderID int64, upd repo.OrderUpdate) error {
	args := m.Called(ctx, orderID, upd)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, variantID *int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, variantID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) FindByKey(ctx context.Context, productID int64, merchantID int64, variantID *int64) (model.Inventory, error) {
	args := m.Called(ctx, productID, merchantID, variantID)
	inv, _ := args.Get(0).(model.Inventory)
	return inv, args.Error(1)
}

func (m *InventoryRepoMock) FindByID(ctx context.Context, inventoryID int64) (model.Inventory, error) {
	args := m.Called(ctx, inventoryID)
	inv, _ := args.Get(0).(model.Inventory)
	return inv, args.Error(1)
}

func (m *InventoryRepoMock) ListByMerchantID(ctx context.Context, merchantID int64) ([]model.Inventory, error) {
	args := m.Called(ctx, merchantID)
	items, _ := args.Get(0).([]model.Inventory)
	return items, args.Error(1)
}

func (m *InventoryRepoMock) Create(ctx context.Context, inv model.Inventory) (model.Inventory, error) {
	args := m.Called(ctx, inv)
	created, _ := args.Get(0).(model.Inventory)
	return created, args.Error(1)
}

func (m *InventoryRepoMock) AddStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) error {
	args := m.Called(ctx, inventoryID, qty, ref)
	return args.Error(0)
}

func (m *InventoryRepoMock) ReserveStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	args := m.Called(ctx, inventoryID, qty, ref)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) ReleaseStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	args := m.Called(ctx, inventoryID, qty, ref)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) ConfirmReservation(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	args := m.Called(ctx, inventoryID, qty, ref)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) DeductStock(ctx context.Context, inventoryID int64, qty int64, ref repo.InventoryLogRef) (bool, error) {
	args := m.Called(ctx, inventoryID, qty, ref)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) ListLogs(ctx context.Context, inventoryID int64) ([]model.InventoryLog, error) {
	args := m.Called(ctx, inventoryID)
	logs, _ := args.Get(0).([]model.InventoryLog)
	return logs, args.Error(1)
}
