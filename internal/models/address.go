package models

type Address struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

// AddressRequest defines the shape of the request body for creating or replacing an address.
type AddressRequest struct {
	Label      string `json:"label" validate:"required,min=2,max=30"`
	FullName   string `json:"fullName" validate:"required,min=2,max=80"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Street     string `json:"street" validate:"required,min=5"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required,min=4,max=10"`
	Country    string `json:"country,omitempty"`
	IsDefault  bool   `json:"isDefault"`
}

// AddressesResponse carries the authoritative address list after any address mutation.
type AddressesResponse struct {
	Addresses []Address `json:"addresses"`
}
