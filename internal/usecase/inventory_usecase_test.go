package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddStock_FirstReceiptCreatesRecord(t *testing.T) {
	products := new(ProductRepoMock)
	inventory := new(InventoryRepoMock)
	uc := usecase.NewInventoryUsecase(products, inventory)

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, MerchantID: 11, IsActive: true}, nil)
	inventory.On("FindByKey", mock.Anything, int64(100), int64(11), (*int64)(nil)).
		Return(model.Inventory{}, repo.ErrNotFound)
	inventory.On("Create", mock.Anything, mock.MatchedBy(func(inv model.Inventory) bool {
		return inv.ProductID == 100 && inv.MerchantID == 11 && inv.Location == "shelf A"
	})).Return(model.Inventory{ID: 1000, ProductID: 100, MerchantID: 11, Location: "shelf A"}, nil)
	inventory.On("AddStock", mock.Anything, int64(1000), int64(50), mock.Anything).Return(nil)
	inventory.On("FindByID", mock.Anything, int64(1000)).
		Return(model.Inventory{ID: 1000, ProductID: 100, MerchantID: 11, Quantity: 50, ReorderLevel: 10}, nil)

	out, err := uc.AddStock(context.Background(), 11, model.RoleMerchant, usecase.AddStockInput{
		ProductID: 100,
		Quantity:  50,
		Location:  "shelf A",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(50), out.Quantity)
	assert.Equal(t, int64(50), out.AvailableQuantity)
	assert.False(t, out.NeedsReorder)
}

func TestAddStock_OnlyOwningMerchant(t *testing.T) {
	products := new(ProductRepoMock)
	inventory := new(InventoryRepoMock)
	uc := usecase.NewInventoryUsecase(products, inventory)

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, MerchantID: 11, IsActive: true}, nil)

	_, err := uc.AddStock(context.Background(), 12, model.RoleMerchant, usecase.AddStockInput{
		ProductID: 100,
		Quantity:  10,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)
	inventory.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddStock_AdminCanRestockAnyProduct(t *testing.T) {
	products := new(ProductRepoMock)
	inventory := new(InventoryRepoMock)
	uc := usecase.NewInventoryUsecase(products, inventory)

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, MerchantID: 11, IsActive: true}, nil)
	inventory.On("FindByKey", mock.Anything, int64(100), int64(11), (*int64)(nil)).
		Return(model.Inventory{ID: 1000, ProductID: 100, MerchantID: 11, Quantity: 5}, nil)
	inventory.On("AddStock", mock.Anything, int64(1000), int64(10), mock.Anything).Return(nil)
	inventory.On("FindByID", mock.Anything, int64(1000)).
		Return(model.Inventory{ID: 1000, ProductID: 100, MerchantID: 11, Quantity: 15, ReorderLevel: 10}, nil)

	out, err := uc.AddStock(context.Background(), 99, model.RoleAdmin, usecase.AddStockInput{
		ProductID: 100,
		Quantity:  10,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(15), out.Quantity)
}

func TestAddStock_UserRoleForbidden(t *testing.T) {
	uc := usecase.NewInventoryUsecase(new(ProductRepoMock), new(InventoryRepoMock))

	_, err := uc.AddStock(context.Background(), 1, model.RoleUser, usecase.AddStockInput{
		ProductID: 100,
		Quantity:  10,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)
}

func TestListLogs_OtherMerchantForbidden(t *testing.T) {
	products := new(ProductRepoMock)
	inventory := new(InventoryRepoMock)
	uc := usecase.NewInventoryUsecase(products, inventory)

	inventory.On("FindByID", mock.Anything, int64(1000)).
		Return(model.Inventory{ID: 1000, MerchantID: 11}, nil)

	_, err := uc.ListLogs(context.Background(), 12, model.RoleMerchant, 1000)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)
	inventory.AssertNotCalled(t, "ListLogs", mock.Anything, mock.Anything)
}
