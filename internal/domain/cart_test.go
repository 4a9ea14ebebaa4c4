package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddLine(t *testing.T) {
	productID := uuid.New()

	var cart Cart
	cart.AddLine(productID)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, productID, cart.Items[0].ProductID)
	assert.Equal(t, int32(1), cart.Items[0].Amount)
	assert.Zero(t, cart.Items[0].ID, "line ID is assigned by the store")
}

func TestCart_RemoveLine(t *testing.T) {
	productA, productB := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		lineID  int64
		wantIDs []int64
	}{
		{
			name:    "existing line is removed",
			lineID:  132,
			wantIDs: []int64{44},
		},
		{
			name:    "unknown line is a no-op",
			lineID:  999,
			wantIDs: []int64{44, 132},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := Cart{
				Items: []CartItem{
					{ID: 44, ProductID: productA, Amount: 1},
					{ID: 132, ProductID: productB, Amount: 3},
				},
			}

			cart.RemoveLine(tt.lineID)

			ids := make([]int64, 0, len(cart.Items))
			for _, item := range cart.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCart_FindLine(t *testing.T) {
	productA, productB := uuid.New(), uuid.New()

	cart := Cart{
		Items: []CartItem{
			{ID: 44, ProductID: productA, Amount: 1},
			{ID: 132, ProductID: productB, Amount: 3},
		},
	}

	line := cart.FindLine(productB)
	require.NotNil(t, line)
	assert.Equal(t, int64(132), line.ID)

	// returned pointer aliases the cart's own line
	line.Amount++
	assert.Equal(t, int32(4), cart.Items[1].Amount)

	assert.Nil(t, cart.FindLine(uuid.New()))
}

func TestCart_FindLine_EmptyCart(t *testing.T) {
	var cart Cart
	assert.Nil(t, cart.FindLine(uuid.New()))
}
