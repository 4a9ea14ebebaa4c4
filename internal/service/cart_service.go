package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ageinghippy/cncart/internal/domain"
	"github.com/ageinghippy/cncart/internal/port"
)

// CartService orchestrates every cart mutation as one read-mutate-save cycle
// over a single aggregate. The cycle runs inside the store's transaction:
// store.Update locks the cart row before reading its lines and persists the
// mutated aggregate before releasing the lock, so concurrent mutations of
// one cart serialize and no increment is lost.
type CartService struct {
	store port.CartStore
	log   *slog.Logger
}

func NewCartService(store port.CartStore, log *slog.Logger) *CartService {
	if log == nil {
		log = slog.Default()
	}
	return &CartService{
		store: store,
		log:   log,
	}
}

// GetCartByOwnerID returns the cart owned by ownerID, creating and persisting
// an empty one when none exists yet. Once the cart exists this is a pure read.
func (s *CartService) GetCartByOwnerID(ctx context.Context, ownerID string) (domain.Cart, error) {
	cart, found, err := s.store.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.FindByOwnerID: %w", err)
	}
	if found {
		return cart, nil
	}

	created, err := s.store.Create(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Create: %w", err)
	}

	s.log.InfoContext(ctx, "cart created",
		slog.String("owner_id", ownerID),
		slog.Int64("cart_id", created.ID))

	return created, nil
}

// AddItem increments the line holding productID, or appends a new line with
// an amount of one when the product is not in the cart yet. The cart ends up
// with exactly one line per product. The cart is created when absent.
func (s *CartService) AddItem(ctx context.Context, ownerID string, productID uuid.UUID) (domain.Cart, error) {
	saved, err := s.store.Update(ctx, ownerID, func(cart *domain.Cart) {
		if line := cart.FindLine(productID); line != nil {
			line.Amount++
		} else {
			cart.AddLine(productID)
		}
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Update: %w", err)
	}

	return saved, nil
}

// RemoveItem decrements the line holding productID and removes the line
// entirely once its amount reaches zero, so a non-positive amount is never
// persisted. A product absent from the cart is a silent no-op.
func (s *CartService) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (domain.Cart, error) {
	saved, err := s.store.Update(ctx, ownerID, func(cart *domain.Cart) {
		if line := cart.FindLine(productID); line != nil {
			line.Amount--
			if line.Amount <= 0 {
				cart.RemoveLine(line.ID)
			}
		}
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Update: %w", err)
	}

	return saved, nil
}

// RemoveCartLine removes the line with the given line ID regardless of its
// amount. An unknown line ID is a silent no-op.
func (s *CartService) RemoveCartLine(ctx context.Context, ownerID string, lineID int64) (domain.Cart, error) {
	saved, err := s.store.Update(ctx, ownerID, func(cart *domain.Cart) {
		cart.RemoveLine(lineID)
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Update: %w", err)
	}

	return saved, nil
}

// UpdateAmount sets the amount of the line with the given line ID and
// persists the result. A requested amount of zero or less removes the line,
// keeping the at-least-one invariant on every mutation path. An unknown line
// ID is a silent no-op.
func (s *CartService) UpdateAmount(ctx context.Context, ownerID string, lineID int64, amount int32) (domain.Cart, error) {
	saved, err := s.store.Update(ctx, ownerID, func(cart *domain.Cart) {
		for i := range cart.Items {
			if cart.Items[i].ID == lineID {
				if amount <= 0 {
					cart.RemoveLine(lineID)
				} else {
					cart.Items[i].Amount = amount
				}
				return
			}
		}
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Update: %w", err)
	}

	return saved, nil
}
