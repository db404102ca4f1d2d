package domain

import "time"

// Customer is a storefront account. RemoteCustomerCode is filled in on first login
// once the matching Unleashed customer is known.
type Customer struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"firstName,omitempty"`
	LastName           string    `json:"lastName,omitempty"`
	RemoteCustomerCode string    `json:"remoteCustomerCode,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Contact is a row of the contact cache: the Unleashed customer created for a buyer email.
type Contact struct {
	Email        string    `json:"contactEmail"`
	CustomerCode string    `json:"customerCode"`
	CustomerGUID string    `json:"customerGuid"`
	CreatedAt    time.Time `json:"createdAt"`
}
