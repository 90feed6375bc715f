package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayfarerhq/wayfarer-backend/pkg/db/models"
)

// Repository persists cart sessions, items and their ancillary selections.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateRecord inserts a new cart session.
func (r *Repository) CreateRecord(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByID loads a cart with its items and their services in insertion order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Services", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindItem returns the cart item holding the given offer, if present.
func (r *Repository) FindItem(ctx context.Context, cartID uuid.UUID, offerID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Services", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("cart_id = ? AND offer_id = ?", cartID, offerID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a cart item.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// ReplaceServices atomically replaces the service rows for a cart item.
func (r *Repository) ReplaceServices(ctx context.Context, cartItemID uuid.UUID, services []models.CartItemService) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_item_id = ?", cartItemID).Delete(&models.CartItemService{}).Error; err != nil {
		return err
	}
	if len(services) == 0 {
		return nil
	}
	for i := range services {
		services[i].CartItemID = cartItemID
		services[i].Position = i
	}
	return tx.Create(&services).Error
}

// DeleteItem removes one offer from the cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID uuid.UUID, offerID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND offer_id = ?", cartID, offerID).
		Delete(&models.CartItem{}).Error
}

// DeleteItems removes every offer from the cart, keeping the session itself.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
