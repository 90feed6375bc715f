package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
)

// CartItemService persists one ancillary selection (seat or bag) attached
// to a cart item. Position preserves insertion order.
type CartItemService struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartItemID  uuid.UUID         `gorm:"column:cart_item_id;type:uuid;not null"`
	ServiceID   string            `gorm:"column:service_id;not null"`
	Type        enums.ServiceType `gorm:"column:type;not null"`
	Quantity    int               `gorm:"column:quantity;not null;default:1"`
	Amount      string            `gorm:"column:amount;not null"`
	Currency    string            `gorm:"column:currency;not null"`
	PassengerID string            `gorm:"column:passenger_id"`
	SegmentID   string            `gorm:"column:segment_id"`
	Designator  string            `gorm:"column:designator"`
	Position    int               `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
