package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementTypeValid(t *testing.T) {
	for _, mt := range []MovementType{
		MovementInitial, MovementInitialSet, MovementAdjustment,
		MovementAdd, MovementRemove, MovementTransferOut, MovementTransferIn,
	} {
		assert.True(t, mt.Valid(), string(mt))
	}
	assert.False(t, MovementType("RESTOCK").Valid())
	assert.False(t, MovementType("").Valid())
}

func TestVariationQuantity(t *testing.T) {
	rec := InventoryRecord{
		Quantity: 7,
		Variations: []InventoryVariation{
			{SKU: "SHIRT-RED", Quantity: 5},
			{SKU: "SHIRT-BLUE", Quantity: 2},
			{SKU: "SHIRT-GREEN", Quantity: 0},
		},
	}

	q, ok := rec.VariationQuantity("SHIRT-RED")
	assert.True(t, ok)
	assert.Equal(t, int64(5), q)

	// A zero-quantity row still counts as stocked.
	q, ok = rec.VariationQuantity("SHIRT-GREEN")
	assert.True(t, ok)
	assert.Zero(t, q)

	_, ok = rec.VariationQuantity("SHIRT-BLACK")
	assert.False(t, ok)

	assert.Equal(t, rec.Quantity, rec.VariationSum())
}

func TestIsLowStock(t *testing.T) {
	assert.False(t, (&InventoryRecord{Quantity: 0}).IsLowStock(), "no reorder point set")
	assert.True(t, (&InventoryRecord{Quantity: 3, ReorderPoint: 5}).IsLowStock())
	assert.True(t, (&InventoryRecord{Quantity: 5, ReorderPoint: 5}).IsLowStock())
	assert.False(t, (&InventoryRecord{Quantity: 6, ReorderPoint: 5}).IsLowStock())
}
