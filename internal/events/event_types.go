package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventContactCreated EventType = "contact_created"
	EventContactUpdated EventType = "contact_updated"
	EventContactDeleted EventType = "contact_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ActorID    string      `json:"actor_id"`
	ResourceID string      `json:"resource_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ContactChangedPayload payload for create, update and delete.
type ContactChangedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
