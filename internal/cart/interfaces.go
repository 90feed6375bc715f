package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayfarerhq/wayfarer-backend/pkg/db/models"
)

// CartRepository exposes persistence operations for cart sessions.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	CreateRecord(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartRecord, error)
	FindItem(ctx context.Context, cartID uuid.UUID, offerID string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	ReplaceServices(ctx context.Context, cartItemID uuid.UUID, services []models.CartItemService) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, offerID string) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}
