package repository_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	infra "app/internal/infra/repository"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateActiveByUserID_IsIdempotent(t *testing.T) {
	r := infra.NewCartGormRepository(newTestDB(t))
	ctx := context.Background()

	first, err := r.GetOrCreateActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CartStatusActive, first.Status)

	second, err := r.GetOrCreateActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// 別ユーザーは別カート
	other, err := r.GetOrCreateActiveByUserID(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUpsertByCartAndProduct_MergesSameLine(t *testing.T) {
	r := infra.NewCartGormRepository(newTestDB(t))
	ctx := context.Background()

	cart, err := r.GetOrCreateActiveByUserID(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 100, nil, 3, 1000))
	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 100, nil, 2, 1200))

	items, err := r.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
	// snapshotは最初の追加時点の価格のまま
	assert.Equal(t, int64(1000), items[0].UnitPriceSnapshot)
}

func TestUpsertByCartAndProduct_VariantsAreSeparateLines(t *testing.T) {
	r := infra.NewCartGormRepository(newTestDB(t))
	ctx := context.Background()

	cart, err := r.GetOrCreateActiveByUserID(ctx, 1)
	require.NoError(t, err)

	variant := int64(7)
	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 100, nil, 1, 1000))
	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 100, &variant, 1, 1100))

	items, err := r.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestClear_RemovesItemsButKeepsCart(t *testing.T) {
	r := infra.NewCartGormRepository(newTestDB(t))
	ctx := context.Background()

	cart, err := r.GetOrCreateActiveByUserID(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 100, nil, 3, 1000))
	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 200, nil, 1, 500))

	require.NoError(t, r.Clear(ctx, cart.ID))

	items, err := r.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	kept, err := r.FindActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, kept.ID)
}

func TestClear_UnknownCart(t *testing.T) {
	r := infra.NewCartGormRepository(newTestDB(t))

	err := r.Clear(context.Background(), 999)
	assert.Equal(t, repo.ErrNotFound, err)
}

func TestIsOwnedByUser(t *testing.T) {
	r := infra.NewCartGormRepository(newTestDB(t))
	ctx := context.Background()

	cart, err := r.GetOrCreateActiveByUserID(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, r.UpsertByCartAndProduct(ctx, cart.ID, 100, nil, 1, 1000))

	items, err := r.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	owned, err := r.IsOwnedByUser(ctx, items[0].ID, 1)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = r.IsOwnedByUser(ctx, items[0].ID, 2)
	require.NoError(t, err)
	assert.False(t, owned)
}
