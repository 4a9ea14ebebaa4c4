package port

import (
	"context"

	"github.com/ageinghippy/cncart/internal/domain"
)

// CartStore is the persistence boundary for cart aggregates.
//
// Every cart mutation runs through Update, which executes the full
// read-modify-write cycle inside a single transaction: the cart row is
// locked before its lines are read, so two concurrent cycles on the same
// cart cannot interleave at the line-mutation step.
type CartStore interface {
	// FindByOwnerID returns the cart owned by ownerID. found is false when no
	// cart exists for that owner; that is not an error.
	FindByOwnerID(ctx context.Context, ownerID string) (cart domain.Cart, found bool, err error)

	// Create inserts an empty cart for ownerID if none exists yet and returns
	// the persisted cart. It never modifies lines: when another writer created
	// the cart concurrently, Create returns that cart with its lines intact.
	Create(ctx context.Context, ownerID string) (domain.Cart, error)

	// Update loads the cart for ownerID under a row lock (creating it when
	// absent), applies mutate to the aggregate, persists the result, and
	// returns the persisted representation, all in one transaction. New lines
	// get identifiers assigned; lines dropped by mutate are deleted.
	Update(ctx context.Context, ownerID string, mutate func(cart *domain.Cart)) (domain.Cart, error)
}
