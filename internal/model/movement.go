package model

import "time"

// MovementType is the closed set of ledger entry kinds.
type MovementType string

const (
	MovementInitial     MovementType = "INITIAL"
	MovementInitialSet  MovementType = "INITIAL_SET"
	MovementAdjustment  MovementType = "ADJUSTMENT"
	MovementAdd         MovementType = "ADD"
	MovementRemove      MovementType = "REMOVE"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementTransferIn  MovementType = "TRANSFER_IN"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementInitial, MovementInitialSet, MovementAdjustment,
		MovementAdd, MovementRemove, MovementTransferOut, MovementTransferIn:
		return true
	}
	return false
}

// StockMovement is one immutable ledger entry. QuantityAfter is the
// resulting quantity of the variant when VariantSKU is set, else of the
// location total.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	OwnerID        string       `db:"owner_id" json:"owner_id"`
	ProductID      string       `db:"product_id" json:"product_id"`
	LocationID     string       `db:"location_id" json:"location_id"`
	InventoryID    string       `db:"inventory_id" json:"inventory_id"`
	VariantSKU     *string      `db:"variant_sku" json:"variant_sku"` // Nullable
	Type           MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange int64        `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int64        `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int64        `db:"quantity_after" json:"quantity_after"`
	Reason         string       `db:"reason" json:"reason"`
	Notes          string       `db:"notes" json:"notes"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"` // Nullable
	CreatedBy      *string      `db:"created_by" json:"created_by"`     // Nullable
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// MovementWithNames joins a movement with display metadata. The names
// are nullable so out-of-band deletions of a product or location do not
// break history views.
type MovementWithNames struct {
	StockMovement
	ProductName  *string `db:"product_name" json:"product_name"`
	LocationName *string `db:"location_name" json:"location_name"`
}
