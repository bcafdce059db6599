package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/contactkeeper/contact-service/internal/domain"
)

const contactCachePrefix = "contacts:by-id:"

type cachedContact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func encodeContact(contact *domain.Contact) ([]byte, error) {
	return json.Marshal(cachedContact{
		ID:        contact.ID,
		OwnerID:   contact.OwnerID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	})
}

func decodeContact(raw []byte) (*domain.Contact, error) {
	var entry cachedContact
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	if entry.ID == "" || entry.OwnerID == "" {
		return nil, errors.New("incomplete cache entry")
	}
	return &domain.Contact{
		ID:        entry.ID,
		OwnerID:   entry.OwnerID,
		Name:      entry.Name,
		Email:     entry.Email,
		Phone:     entry.Phone,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}, nil
}

func contactCacheKey(id string) string {
	return contactCachePrefix + id
}

// cachedContactRepository is a read-through Redis cache in front of another ContactRepository.
// Only single-record lookups are cached; listing always hits the backing store.
// Cache failures degrade to the backing store and are logged.
type cachedContactRepository struct {
	next   ContactRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedContactRepository wraps next with a Redis cache. A nil client or non-positive ttl disables caching.
func NewCachedContactRepository(next ContactRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) ContactRepository {
	if client == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedContactRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func (r *cachedContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if err := r.next.Create(ctx, contact); err != nil {
		return err
	}
	r.store(ctx, contact)
	return nil
}

func (r *cachedContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	raw, err := r.client.Get(ctx, contactCacheKey(id)).Bytes()
	switch {
	case err == nil:
		if contact, decodeErr := decodeContact(raw); decodeErr == nil {
			return contact, nil
		}
		r.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("contact cache read failed", zap.String("contact_id", id), zap.Error(err))
	}

	contact, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, contact)
	return contact, nil
}

func (r *cachedContactRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	return r.next.ListByOwner(ctx, ownerID)
}

// Update and Delete evict on both sides of the backing write. The second eviction drops
// any stale copy a concurrent GetByID cached while the write was in flight.
func (r *cachedContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	r.evict(ctx, contact.ID)
	defer r.evict(ctx, contact.ID)
	return r.next.Update(ctx, contact)
}

func (r *cachedContactRepository) Delete(ctx context.Context, id string) error {
	r.evict(ctx, id)
	defer r.evict(ctx, id)
	return r.next.Delete(ctx, id)
}

func (r *cachedContactRepository) store(ctx context.Context, contact *domain.Contact) {
	raw, err := encodeContact(contact)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, contactCacheKey(contact.ID), raw, r.ttl).Err(); err != nil {
		r.logger.Warn("contact cache write failed", zap.String("contact_id", contact.ID), zap.Error(err))
	}
}

func (r *cachedContactRepository) evict(ctx context.Context, id string) {
	if err := r.client.Del(ctx, contactCacheKey(id)).Err(); err != nil {
		r.logger.Warn("contact cache evict failed", zap.String("contact_id", id), zap.Error(err))
	}
}
