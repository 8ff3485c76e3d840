package contacts

import (
	"github.com/google/uuid"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
)

// ContactDTO is the transport shape for one delivery contact.
type ContactDTO struct {
	ID        uuid.UUID `json:"id"`
	City      string    `json:"city"`
	Street    string    `json:"street"`
	House     string    `json:"house,omitempty"`
	Structure string    `json:"structure,omitempty"`
	Building  string    `json:"building,omitempty"`
	Apartment string    `json:"apartment,omitempty"`
	Phone     string    `json:"phone"`
}

// CreateContactRequest is the payload for POST /contact.
type CreateContactRequest struct {
	City      string `json:"city" validate:"required"`
	Street    string `json:"street" validate:"required"`
	House     string `json:"house,omitempty"`
	Structure string `json:"structure,omitempty"`
	Building  string `json:"building,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone" validate:"required"`
}

// UpdateContactRequest edits a contact in place; nil fields stay untouched.
type UpdateContactRequest struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	City      *string   `json:"city,omitempty"`
	Street    *string   `json:"street,omitempty"`
	House     *string   `json:"house,omitempty"`
	Structure *string   `json:"structure,omitempty"`
	Building  *string   `json:"building,omitempty"`
	Apartment *string   `json:"apartment,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
}

// DeleteContactsRequest removes a batch of the caller's contacts.
type DeleteContactsRequest struct {
	Items []uuid.UUID `json:"items" validate:"required,min=1"`
}

// DeleteContactsResponse reports how many rows were removed.
type DeleteContactsResponse struct {
	Deleted int64 `json:"deleted"`
}

func FromModel(c *models.Contact) *ContactDTO {
	if c == nil {
		return nil
	}
	return &ContactDTO{
		ID:        c.ID,
		City:      c.City,
		Street:    c.Street,
		House:     c.House,
		Structure: c.Structure,
		Building:  c.Building,
		Apartment: c.Apartment,
		Phone:     c.Phone,
	}
}

func FromModels(rows []models.Contact) []ContactDTO {
	out := make([]ContactDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
