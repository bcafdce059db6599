package domain

// Subject is the identity claim carried by an access token.
type Subject struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       string `json:"id"`
}

// Owned is implemented by resources that record the identity that created them.
type Owned interface {
	Owner() string
}
