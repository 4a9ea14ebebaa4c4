package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ageinghippy/cncart/internal/domain"
	"github.com/ageinghippy/cncart/internal/port"
)

const (
	selectCartSQL = `SELECT id, owner_id, created_at, updated_at
		FROM carts
		WHERE owner_id = $1`

	insertCartSQL = `INSERT INTO carts (owner_id)
		VALUES ($1)
		ON CONFLICT (owner_id) DO NOTHING`

	// The DO UPDATE arm also fires on an existing row, so the statement both
	// creates the cart atomically and takes a row lock that holds until
	// commit, serializing concurrent Update transactions for the same owner.
	lockCartSQL = `INSERT INTO carts (owner_id)
		VALUES ($1)
		ON CONFLICT (owner_id) DO UPDATE SET updated_at = now()
		RETURNING id, created_at, updated_at`

	selectLinesSQL = `SELECT id, product_id, amount, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`

	insertLineSQL = `INSERT INTO cart_items (cart_id, product_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id`

	updateLineSQL = `UPDATE cart_items
		SET amount = $1
		WHERE id = $2 AND cart_id = $3`

	deleteStaleLinesSQL = `DELETE FROM cart_items
		WHERE cart_id = $1 AND NOT (id = ANY($2))`
)

type cartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) port.CartStore {
	return &cartStore{pool: pool}
}

func (s *cartStore) FindByOwnerID(ctx context.Context, ownerID string) (domain.Cart, bool, error) {
	if ownerID == "" {
		return domain.Cart{}, false, fmt.Errorf("ownerID is empty")
	}

	var cart domain.Cart
	err := s.pool.QueryRow(ctx, selectCartSQL, ownerID).
		Scan(&cart.ID, &cart.OwnerID, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("pool.QueryRow carts: %w", err)
	}

	items, err := queryLines(ctx, s.pool, cart.ID)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("queryLines: %w", err)
	}
	cart.Items = items

	return cart, true, nil
}

func (s *cartStore) Create(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	return withTx(ctx, s.pool, func(tx pgx.Tx) (domain.Cart, error) {
		if _, err := tx.Exec(ctx, insertCartSQL, ownerID); err != nil {
			return domain.Cart{}, fmt.Errorf("tx.Exec insert cart: %w", err)
		}

		var cart domain.Cart
		err := tx.QueryRow(ctx, selectCartSQL, ownerID).
			Scan(&cart.ID, &cart.OwnerID, &cart.CreatedAt, &cart.UpdatedAt)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("tx.QueryRow carts: %w", err)
		}

		// A concurrent writer may have created the cart and added lines
		// already; they are returned untouched.
		items, err := queryLines(ctx, tx, cart.ID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("queryLines: %w", err)
		}
		cart.Items = items

		return cart, nil
	})
}

func (s *cartStore) Update(ctx context.Context, ownerID string, mutate func(cart *domain.Cart)) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}
	if mutate == nil {
		return domain.Cart{}, fmt.Errorf("mutate is nil")
	}

	return withTx(ctx, s.pool, func(tx pgx.Tx) (domain.Cart, error) {
		cart := domain.Cart{OwnerID: ownerID}

		err := tx.QueryRow(ctx, lockCartSQL, ownerID).
			Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("tx.QueryRow lock cart: %w", err)
		}

		// The lines are read only after the cart row is locked, so mutate
		// always sees the latest committed state.
		items, err := queryLines(ctx, tx, cart.ID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("queryLines: %w", err)
		}
		cart.Items = items

		mutate(&cart)

		keepIDs := make([]int64, 0, len(cart.Items))
		for i := range cart.Items {
			item := cart.Items[i]

			if item.ID == 0 {
				var lineID int64
				err := tx.QueryRow(ctx, insertLineSQL, cart.ID, item.ProductID, item.Amount).
					Scan(&lineID)
				if err != nil {
					return domain.Cart{}, fmt.Errorf("tx.QueryRow insert line: %w", err)
				}
				keepIDs = append(keepIDs, lineID)
				continue
			}

			if _, err := tx.Exec(ctx, updateLineSQL, item.Amount, item.ID, cart.ID); err != nil {
				return domain.Cart{}, fmt.Errorf("tx.Exec update line: %w", err)
			}
			keepIDs = append(keepIDs, item.ID)
		}

		// Lines dropped by mutate are deleted; with no lines kept this
		// clears the cart.
		if _, err := tx.Exec(ctx, deleteStaleLinesSQL, cart.ID, keepIDs); err != nil {
			return domain.Cart{}, fmt.Errorf("tx.Exec delete stale lines: %w", err)
		}

		saved, err := queryLines(ctx, tx, cart.ID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("queryLines: %w", err)
		}
		cart.Items = saved

		return cart, nil
	})
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q rowQuerier, cartID int64) ([]domain.CartItem, error) {
	rows, err := q.Query(ctx, selectLinesSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("q.Query cart_items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Amount, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}
