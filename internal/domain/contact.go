package domain

import "time"

// Contact is an address book entry owned by a single user.
type Contact struct {
	ID        string
	OwnerID   string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner implements Owned.
func (c *Contact) Owner() string {
	return c.OwnerID
}

// ContactPatch carries the mutable fields of a contact; nil fields are left untouched.
type ContactPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// Apply copies the set fields of p onto c. The owner is never changed.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
}
