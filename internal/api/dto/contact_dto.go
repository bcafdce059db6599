package dto

import (
	"time"

	"github.com/contactkeeper/contact-service/internal/domain"
)

// CreateContactRequest payload for POST /contacts.
type CreateContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateContactRequest payload for PUT /contacts/:id. Absent fields are left unchanged.
// Any owner field in the body is ignored.
type UpdateContactRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Patch converts the request into a domain patch.
func (r UpdateContactRequest) Patch() domain.ContactPatch {
	return domain.ContactPatch{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

// ContactResponse is the wire form of a contact.
type ContactResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewContactResponse maps a domain contact.
func NewContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
