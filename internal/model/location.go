package model

type Location struct {
	BaseModel
	OwnerID string `db:"owner_id" json:"owner_id"`
	Name    string `db:"name" json:"name"`
}

// LocationTotals is the per-location aggregate used by the reporting
// views: the location joined with the sum of its inventory quantities.
type LocationTotals struct {
	Location
	TotalQuantity int64 `db:"total_quantity" json:"total_quantity"`
	RecordCount   int   `db:"record_count" json:"record_count"`
}
