package dto

type CreateLocationInput struct {
	OwnerID string
	Name    string
}

type LocationFilters struct {
	OwnerID  string
	Page     int
	PageSize int
}
