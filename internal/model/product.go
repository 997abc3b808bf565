package model

// Inventory types a product can carry. The catalog subsystem owns the
// full product document; this service only reads the fields below.
const (
	InventoryTypeSimple    = "simple"
	InventoryTypeVariation = "variation"
)

type Product struct {
	ID            string           `db:"id" json:"id"`
	OwnerID       string           `db:"owner_id" json:"owner_id"`
	SKU           string           `db:"sku" json:"sku"`
	Name          string           `db:"name" json:"name"`
	InventoryType string           `db:"inventory_type" json:"inventory_type"`
	RetailPrice   *float64         `db:"retail_price" json:"retail_price"` // Nullable
	Variants      []ProductVariant `db:"-" json:"variants,omitempty"`
}

type ProductVariant struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"product_id"`
	SKU       string `db:"sku" json:"sku"`
}

func (p *Product) HasVariants() bool {
	return p.InventoryType == InventoryTypeVariation
}
