package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wayfarerhq/wayfarer-backend/pkg/db/models"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	cartRecords := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  offer_id TEXT NOT NULL,
  offer TEXT,
  search_params TEXT,
  passenger_ids TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, offer_id)
);`
	cartItemServices := `
CREATE TABLE IF NOT EXISTS cart_item_services (
  id TEXT PRIMARY KEY,
  cart_item_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL,
  passenger_id TEXT,
  segment_id TEXT,
  designator TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(cartRecords).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec(cartItemServices).Error)
	return db
}

func createCart(t *testing.T, db *gorm.DB) *models.CartRecord {
	t.Helper()

	record := &models.CartRecord{ID: uuid.New()}
	require.NoError(t, db.Create(record).Error)
	return record
}

func TestRepositoryCreateAndFindItem(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := createCart(t, db)

	item := &models.CartItem{
		ID:           uuid.New(),
		CartID:       record.ID,
		OfferID:      "off_123",
		Offer:        json.RawMessage(`{"id":"off_123"}`),
		PassengerIDs: []string{"pas_1", "pas_2"},
	}
	require.NoError(t, repo.CreateItem(ctx, item))

	found, err := repo.FindItem(ctx, record.ID, "off_123")
	require.NoError(t, err)
	require.Equal(t, item.ID, found.ID)
	require.Equal(t, []string{"pas_1", "pas_2"}, []string(found.PassengerIDs))
}

func TestRepositoryFindItemMissing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	record := createCart(t, db)

	_, err := repo.FindItem(context.Background(), record.ID, "off_missing")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryDuplicateOfferRejectedByIndex(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := createCart(t, db)

	first := &models.CartItem{ID: uuid.New(), CartID: record.ID, OfferID: "off_123"}
	require.NoError(t, repo.CreateItem(ctx, first))

	dup := &models.CartItem{ID: uuid.New(), CartID: record.ID, OfferID: "off_123"}
	require.Error(t, repo.CreateItem(ctx, dup))
}

func TestRepositoryReplaceServicesKeepsOrder(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := createCart(t, db)
	item := &models.CartItem{ID: uuid.New(), CartID: record.ID, OfferID: "off_123"}
	require.NoError(t, repo.CreateItem(ctx, item))

	rows := []models.CartItemService{
		{ID: uuid.New(), ServiceID: "ase_1", Type: enums.ServiceTypeSeat, Quantity: 1, Amount: "25.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1", Designator: "12A"},
		{ID: uuid.New(), ServiceID: "bag_1", Type: enums.ServiceTypeBaggage, Quantity: 2, Amount: "40.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1"},
	}
	require.NoError(t, repo.ReplaceServices(ctx, item.ID, rows))

	found, err := repo.FindItem(ctx, record.ID, "off_123")
	require.NoError(t, err)
	require.Len(t, found.Services, 2)
	require.Equal(t, "ase_1", found.Services[0].ServiceID)
	require.Equal(t, "bag_1", found.Services[1].ServiceID)

	replacement := []models.CartItemService{
		{ID: uuid.New(), ServiceID: "bag_2", Type: enums.ServiceTypeBaggage, Quantity: 1, Amount: "30.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1"},
	}
	require.NoError(t, repo.ReplaceServices(ctx, item.ID, replacement))

	found, err = repo.FindItem(ctx, record.ID, "off_123")
	require.NoError(t, err)
	require.Len(t, found.Services, 1)
	require.Equal(t, "bag_2", found.Services[0].ServiceID)
}

func TestRepositoryReplaceServicesWithEmptyListClears(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := createCart(t, db)
	item := &models.CartItem{ID: uuid.New(), CartID: record.ID, OfferID: "off_123"}
	require.NoError(t, repo.CreateItem(ctx, item))

	rows := []models.CartItemService{
		{ID: uuid.New(), ServiceID: "ase_1", Type: enums.ServiceTypeSeat, Quantity: 1, Amount: "25.00", Currency: "USD"},
	}
	require.NoError(t, repo.ReplaceServices(ctx, item.ID, rows))
	require.NoError(t, repo.ReplaceServices(ctx, item.ID, nil))

	found, err := repo.FindItem(ctx, record.ID, "off_123")
	require.NoError(t, err)
	require.Empty(t, found.Services)
}

func TestRepositoryDeleteItemAndItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := createCart(t, db)
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{ID: uuid.New(), CartID: record.ID, OfferID: "off_1"}))
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{ID: uuid.New(), CartID: record.ID, OfferID: "off_2"}))

	require.NoError(t, repo.DeleteItem(ctx, record.ID, "off_1"))
	_, err := repo.FindItem(ctx, record.ID, "off_1")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.DeleteItems(ctx, record.ID))
	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	require.Empty(t, found.Items)
}
