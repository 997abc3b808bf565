package model

// InventoryRecord is the current-state projection for one
// (product, location) pair. Quantity is the location total; for
// variation products it must equal the sum of the variation quantities.
// Version backs the compare-and-swap on absolute writes.
type InventoryRecord struct {
	BaseModel
	OwnerID      string               `db:"owner_id" json:"owner_id"`
	ProductID    string               `db:"product_id" json:"product_id"`
	LocationID   string               `db:"location_id" json:"location_id"`
	Quantity     int64                `db:"quantity" json:"quantity"`
	ReorderPoint int64                `db:"reorder_point" json:"reorder_point"`
	Version      int64                `db:"version" json:"version"`
	Variations   []InventoryVariation `db:"-" json:"variations,omitempty"`
}

type InventoryVariation struct {
	InventoryID string `db:"inventory_id" json:"-"`
	SKU         string `db:"sku" json:"sku"`
	Quantity    int64  `db:"quantity" json:"quantity"`
}

// VariationQuantity returns the quantity stocked under sku, and whether
// the variation has ever been stocked at this record.
func (r *InventoryRecord) VariationQuantity(sku string) (int64, bool) {
	for _, v := range r.Variations {
		if v.SKU == sku {
			return v.Quantity, true
		}
	}
	return 0, false
}

// VariationSum is the invariant-side of Quantity for variation products.
func (r *InventoryRecord) VariationSum() int64 {
	var sum int64
	for _, v := range r.Variations {
		sum += v.Quantity
	}
	return sum
}

func (r *InventoryRecord) IsLowStock() bool {
	return r.ReorderPoint > 0 && r.Quantity <= r.ReorderPoint
}
