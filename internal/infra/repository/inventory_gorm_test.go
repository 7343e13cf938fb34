package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"app/internal/domain/model"
	infra "app/internal/infra/repository"
	repo "app/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テスト用DB（SQLiteファイル、テスト毎に使い捨て）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Inventory{},
		&model.InventoryLog{},
	))
	return db
}

func createInventory(t *testing.T, r *infra.InventoryGormRepository, qty int64) model.Inventory {
	t.Helper()

	inv, err := r.Create(context.Background(), model.Inventory{
		ProductID:  100,
		MerchantID: 11,
		Quantity:   qty,
	})
	require.NoError(t, err)
	return inv
}

func TestReserveStock_SucceedsWithinAvailable(t *testing.T) {
	r := infra.NewInventoryGormRepository(newTestDB(t))
	ctx := context.Background()
	inv := createInventory(t, r, 10)

	ok, err := r.ReserveStock(ctx, inv.ID, 4, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Equal(t, int64(4), got.ReservedQuantity)
	assert.Equal(t, int64(6), got.AvailableQuantity())
}

func TestReserveStock_NeverOversells(t *testing.T) {
	r := infra.NewInventoryGormRepository(newTestDB(t))
	ctx := context.Background()
	inv := createInventory(t, r, 10)

	ok, err := r.ReserveStock(ctx, inv.ID, 6, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	require.True(t, ok)

	// available = 4 なので 5 は引けない
	ok, err = r.ReserveStock(ctx, inv.ID, 5, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.ReservedQuantity)

	// 失敗した試行はログに残らない
	logs, err := r.ListLogs(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestReleaseStock_BoundedByReserved(t *testing.T) {
	r := infra.NewInventoryGormRepository(newTestDB(t))
	ctx := context.Background()
	inv := createInventory(t, r, 10)

	ok, err := r.ReserveStock(ctx, inv.ID, 4, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	require.True(t, ok)

	// 引当以上は解放できない
	ok, err = r.ReleaseStock(ctx, inv.ID, 5, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.ReleaseStock(ctx, inv.ID, 4, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Equal(t, int64(0), got.ReservedQuantity)
}

func TestConfirmReservation_DeductsBothCounters(t *testing.T) {
	r := infra.NewInventoryGormRepository(newTestDB(t))
	ctx := context.Background()
	inv := createInventory(t, r, 10)

	ok, err := r.ReserveStock(ctx, inv.ID, 4, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.ConfirmReservation(ctx, inv.ID, 4, repo.InventoryLogRef{ActorID: 11, Notes: "order shipped"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Quantity)
	assert.Equal(t, int64(0), got.ReservedQuantity)

	// 引当が無ければ確定もできない
	ok, err = r.ConfirmReservation(ctx, inv.ID, 1, repo.InventoryLogRef{ActorID: 11})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddAndDeductStock(t *testing.T) {
	r := infra.NewInventoryGormRepository(newTestDB(t))
	ctx := context.Background()
	inv := createInventory(t, r, 10)

	require.NoError(t, r.AddStock(ctx, inv.ID, 5, repo.InventoryLogRef{ActorID: 11, Notes: "stock received"}))

	got, err := r.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Quantity)

	// 引当中の分は直接減算できない
	ok, err := r.ReserveStock(ctx, inv.ID, 12, repo.InventoryLogRef{ActorID: 1})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.DeductStock(ctx, inv.ID, 4, repo.InventoryLogRef{ActorID: 11})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.DeductStock(ctx, inv.ID, 3, repo.InventoryLogRef{ActorID: 11})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = r.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.Quantity)
	assert.Equal(t, int64(12), got.ReservedQuantity)
}

func TestInventoryLogs_RecordEveryMovement(t *testing.T) {
	r := infra.NewInventoryGormRepository(newTestDB(t))
	ctx := context.Background()
	inv := createInventory(t, r, 10)

	cartID := int64(10)
	ok, err := r.ReserveStock(ctx, inv.ID, 4, repo.InventoryLogRef{
		ReferenceID:   &cartID,
		ReferenceType: "cart",
		ActorID:       1,
		Notes:         "checkout reservation",
	})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.ReleaseStock(ctx, inv.ID, 4, repo.InventoryLogRef{
		ReferenceID:   &cartID,
		ReferenceType: "cart",
		ActorID:       1,
		Notes:         "checkout rollback",
	})
	require.NoError(t, err)
	require.True(t, ok)

	// 新しい順
	logs, err := r.ListLogs(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	release, reserve := logs[0], logs[1]

	assert.Equal(t, model.InventoryLogTypeReserve, reserve.Type)
	assert.Equal(t, int64(4), reserve.Quantity)
	assert.Equal(t, int64(0), reserve.PreviousQuantity)
	assert.Equal(t, int64(4), reserve.NewQuantity)
	assert.Equal(t, "cart", reserve.ReferenceType)
	require.NotNil(t, reserve.ReferenceID)
	assert.Equal(t, cartID, *reserve.ReferenceID)
	assert.Equal(t, int64(1), reserve.CreatedBy)

	assert.Equal(t, model.InventoryLogTypeRelease, release.Type)
	assert.Equal(t, int64(4), release.PreviousQuantity)
	assert.Equal(t, int64(0), release.NewQuantity)
	assert.Equal(t, "checkout rollback", release.Notes)
}

func TestFindByKey_VariantIsPartOfTheKey(t *testing.T) {
	db := newTestDB(t)
	r := infra.NewInventoryGormRepository(db)
	ctx := context.Background()

	variant := int64(7)
	_, err := r.Create(ctx, model.Inventory{ProductID: 100, MerchantID: 11, Quantity: 3})
	require.NoError(t, err)
	_, err = r.Create(ctx, model.Inventory{ProductID: 100, MerchantID: 11, VariantID: &variant, Quantity: 8})
	require.NoError(t, err)

	noVariant, err := r.FindByKey(ctx, 100, 11, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), noVariant.Quantity)

	withVariant, err := r.FindByKey(ctx, 100, 11, &variant)
	require.NoError(t, err)
	assert.Equal(t, int64(8), withVariant.Quantity)

	_, err = r.FindByKey(ctx, 999, 11, nil)
	assert.Equal(t, repo.ErrNotFound, err)
}
