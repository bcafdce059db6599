package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/contactkeeper/contact-service/internal/auth"
	"github.com/contactkeeper/contact-service/internal/domain"
	"github.com/contactkeeper/contact-service/internal/events"
	"github.com/contactkeeper/contact-service/internal/repository"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

// ContactService coordinates owner-scoped contact workflows.
type ContactService struct {
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ContactDependencies bundles collaborators for the contact service.
type ContactDependencies struct {
	ContactRepo repository.ContactRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ContactCreateInput describes contact creation payload.
type ContactCreateInput struct {
	Name  string
	Email string
	Phone string
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		contacts:   deps.ContactRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateContact stores a new contact owned by the caller.
func (s *ContactService) CreateContact(ctx context.Context, owner domain.Subject, input ContactCreateInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		OwnerID: owner.ID,
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
	}
	if missing := missingFields(field{"name", contact.Name}, field{"email", contact.Email}, field{"phone", contact.Phone}); len(missing) > 0 {
		return nil, apperrors.NewMissingField("all fields are mandatory", missing...)
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventContactCreated, owner.ID, contact)
	return contact, nil
}

// ListContacts returns the caller's contacts. Scoping happens in the store query.
func (s *ContactService) ListContacts(ctx context.Context, owner domain.Subject) ([]domain.Contact, error) {
	contacts, err := s.contacts.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return contacts, nil
}

// GetContact returns a contact the caller owns.
func (s *ContactService) GetContact(ctx context.Context, requester domain.Subject, id string) (*domain.Contact, error) {
	return s.authorize(ctx, requester, id)
}

// UpdateContact applies patch to a contact the caller owns. The owner never changes.
func (s *ContactService) UpdateContact(ctx context.Context, requester domain.Subject, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	contact, err := s.authorize(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	patch = trimPatch(patch)
	if empty := emptyPatchFields(patch); len(empty) > 0 {
		return nil, apperrors.NewMissingField("fields cannot be empty", empty...)
	}

	patch.Apply(contact)
	if err := s.contacts.Update(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventContactUpdated, requester.ID, contact)
	return contact, nil
}

// DeleteContact removes a contact the caller owns and returns it.
func (s *ContactService) DeleteContact(ctx context.Context, requester domain.Subject, id string) (*domain.Contact, error) {
	contact, err := s.authorize(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Delete(ctx, contact.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventContactDeleted, requester.ID, contact)
	return contact, nil
}

// authorize loads the contact and runs the ownership gate. Existence is checked first.
func (s *ContactService) authorize(ctx context.Context, requester domain.Subject, id string) (*domain.Contact, error) {
	var owned domain.Owned
	contact, err := s.contacts.GetByID(ctx, id)
	switch {
	case err == nil:
		owned = contact
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, apperrors.NewInternalError(err)
	}

	if err := auth.AuthorizeOwnerAction(owned, requester.ID); err != nil {
		if apperrors.IsKind(err, apperrors.KindForbidden) {
			s.logger.Info("ownership check denied",
				zap.String("contact_id", id),
				zap.String("requester_id", requester.ID))
		}
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) publish(ctx context.Context, eventType events.EventType, actorID string, contact *domain.Contact) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       eventType,
		ActorID:    actorID,
		ResourceID: contact.ID,
		Payload:    events.ContactChangedPayload{Name: contact.Name, Email: contact.Email},
	})
}

func trimPatch(p domain.ContactPatch) domain.ContactPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return domain.ContactPatch{Name: trim(p.Name), Email: trim(p.Email), Phone: trim(p.Phone)}
}

func emptyPatchFields(p domain.ContactPatch) []string {
	var empty []string
	if p.Name != nil && *p.Name == "" {
		empty = append(empty, "name")
	}
	if p.Email != nil && *p.Email == "" {
		empty = append(empty, "email")
	}
	if p.Phone != nil && *p.Phone == "" {
		empty = append(empty, "phone")
	}
	return empty
}
