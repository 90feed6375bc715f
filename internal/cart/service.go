package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wayfarerhq/wayfarer-backend/internal/ancillary"
	"github.com/wayfarerhq/wayfarer-backend/pkg/db"
	"github.com/wayfarerhq/wayfarer-backend/pkg/db/models"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the cart state container. It holds the offers a traveler
// intends to purchase plus any ancillary services attached to each; it
// never calls the supplier or the payment provider.
type Service interface {
	CreateSession(ctx context.Context) (*models.CartRecord, error)
	Get(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error)
	AddOffer(ctx context.Context, cartID uuid.UUID, input AddOfferInput) (*models.CartItem, error)
	SetServicesForOffer(ctx context.Context, cartID uuid.UUID, offerID string, services types.SelectedServices) error
	ClearOffer(ctx context.Context, cartID uuid.UUID, offerID string) error
	ClearAll(ctx context.Context, cartID uuid.UUID) error
}

// AddOfferInput carries the supplier-opaque payloads stored with an offer.
type AddOfferInput struct {
	OfferID      string
	Offer        json.RawMessage
	SearchParams json.RawMessage
	PassengerIDs []string
}

type service struct {
	repo CartRepository
	tx   txRunner
}

// NewService builds the cart service.
func NewService(repo CartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateSession(ctx context.Context) (*models.CartRecord, error) {
	record := &models.CartRecord{ID: uuid.New()}
	created, err := s.repo.CreateRecord(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart session")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	record, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// AddOffer inserts the offer unless it is already present; adding the same
// offer id twice is a no-op that returns the existing item.
func (s *service) AddOffer(ctx context.Context, cartID uuid.UUID, input AddOfferInput) (*models.CartItem, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	if input.OfferID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	var result *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, cartID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		existing, err := repo.FindItem(ctx, cartID, input.OfferID)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing offer")
		}

		item := &models.CartItem{
			ID:           uuid.New(),
			CartID:       cartID,
			OfferID:      input.OfferID,
			Offer:        input.Offer,
			SearchParams: input.SearchParams,
			PassengerIDs: input.PassengerIDs,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "idx_cart_items_cart_offer") {
				// Lost the insert race to a concurrent add of the same
				// offer; the winning row is the item.
				existing, findErr := repo.FindItem(ctx, cartID, input.OfferID)
				if findErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load winning cart item")
				}
				result = existing
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetServicesForOffer replaces the full services list for the offer. When
// the offer is not in the cart the call leaves state unchanged.
func (s *service) SetServicesForOffer(ctx context.Context, cartID uuid.UUID, offerID string, services types.SelectedServices) error {
	if cartID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	if offerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, cartID, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		if err := ancillary.ValidateServices(offerID, item.PassengerIDs, services); err != nil {
			return err
		}

		rows := make([]models.CartItemService, 0, len(services))
		for _, svc := range services {
			rows = append(rows, models.CartItemService{
				ID:          uuid.New(),
				ServiceID:   svc.ID,
				Type:        svc.Type,
				Quantity:    svc.Quantity,
				Amount:      svc.Amount,
				Currency:    svc.Currency,
				PassengerID: svc.PassengerID,
				SegmentID:   svc.SegmentID,
				Designator:  svc.Designator,
			})
		}
		if err := repo.ReplaceServices(ctx, item.ID, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace services")
		}
		return nil
	})
}

func (s *service) ClearOffer(ctx context.Context, cartID uuid.UUID, offerID string) error {
	if cartID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	if offerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if err := s.repo.DeleteItem(ctx, cartID, offerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

func (s *service) ClearAll(ctx context.Context, cartID uuid.UUID) error {
	if cartID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	if err := s.repo.DeleteItems(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// ServicesView maps persisted service rows back to the wire shape, in
// stored order.
func ServicesView(item *models.CartItem) types.SelectedServices {
	if item == nil {
		return nil
	}
	out := make(types.SelectedServices, 0, len(item.Services))
	for _, row := range item.Services {
		out = append(out, types.SelectedService{
			ID:          row.ServiceID,
			Type:        row.Type,
			Quantity:    row.Quantity,
			Amount:      row.Amount,
			Currency:    row.Currency,
			PassengerID: row.PassengerID,
			SegmentID:   row.SegmentID,
			Designator:  row.Designator,
		})
	}
	return out
}
