package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/kvstore"
	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

func newTestView(t *testing.T) (*Catalog, catalog.Store) {
	t.Helper()
	store, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)

	v := New(store)
	require.NoError(t, v.Refresh(context.Background()))
	return v, store
}

// failingStore wraps a real store and fails every durable write, standing in
// for a storage I/O error.
type failingStore struct {
	catalog.Store
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) AddItem(ctx context.Context, name string, price float64, imageURI string, categoryID int64) (*models.Item, error) {
	return nil, errDiskFull
}

func (f *failingStore) DeleteItem(ctx context.Context, id int64) error {
	return errDiskFull
}

func TestAddItemResolvesTempID(t *testing.T) {
	v, _ := newTestView(t)
	ctx := context.Background()

	cats := v.Categories()
	require.NotEmpty(t, cats)

	item, err := v.AddItem(ctx, "Soy Sauce", 22, "", cats[0].ID)
	require.NoError(t, err)
	require.Positive(t, item.ID)

	items := v.Items()
	require.Len(t, items, 1)
	require.Equal(t, item.ID, items[0].ID)
	require.Equal(t, "Soy Sauce", items[0].Name)
}

func TestFailedAddRollsBackExactly(t *testing.T) {
	v, store := newTestView(t)
	ctx := context.Background()

	cats := v.Categories()
	_, err := v.AddItem(ctx, "Garlic", 12, "", cats[0].ID)
	require.NoError(t, err)
	before := v.Items()

	// Swap in a store that fails the durable write.
	v.store = &failingStore{Store: store}
	_, err = v.AddItem(ctx, "Onion", 15, "", cats[0].ID)
	require.ErrorIs(t, err, errDiskFull)

	require.Equal(t, before, v.Items())
}

func TestFailedDeleteRollsBack(t *testing.T) {
	v, store := newTestView(t)
	ctx := context.Background()

	cats := v.Categories()
	item, err := v.AddItem(ctx, "Garlic", 12, "", cats[0].ID)
	require.NoError(t, err)
	before := v.Items()

	v.store = &failingStore{Store: store}
	require.ErrorIs(t, v.DeleteItem(ctx, item.ID), errDiskFull)
	require.Equal(t, before, v.Items())
}

func TestValidationFailureRollsBack(t *testing.T) {
	v, _ := newTestView(t)
	ctx := context.Background()

	cats := v.Categories()
	_, err := v.AddItem(ctx, "Salt", 8, "", cats[0].ID)
	require.NoError(t, err)
	before := v.Items()

	_, err = v.AddItem(ctx, "salt", 9, "", cats[0].ID)
	require.ErrorIs(t, err, catalog.ErrDuplicateName)
	require.Equal(t, before, v.Items())
}

func TestDeleteCategoryMirrorsCascade(t *testing.T) {
	v, _ := newTestView(t)
	ctx := context.Background()

	cats := v.Categories()
	_, err := v.AddItem(ctx, "Ice Candy", 5, "", cats[0].ID)
	require.NoError(t, err)
	keeper, err := v.AddItem(ctx, "Chips", 15, "", cats[1].ID)
	require.NoError(t, err)

	require.NoError(t, v.DeleteCategory(ctx, cats[0].ID))

	items := v.Items()
	require.Len(t, items, 1)
	require.Equal(t, keeper.ID, items[0].ID)
	require.Len(t, v.Categories(), len(cats)-1)
}

func TestSubscribeNotifies(t *testing.T) {
	v, _ := newTestView(t)
	ctx := context.Background()

	ch := v.Subscribe()
	cats := v.Categories()

	_, err := v.AddItem(ctx, "Candles", 6, "", cats[0].ID)
	require.NoError(t, err)

	select {
	case <-ch:
	default:
		t.Fatal("expected a notification after a committed mutation")
	}
}
