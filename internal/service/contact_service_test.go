package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/contactkeeper/contact-service/internal/domain"
	"github.com/contactkeeper/contact-service/internal/events"
	"github.com/contactkeeper/contact-service/internal/repository"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

var (
	alice = domain.Subject{ID: "user-a", Username: "alice", Email: "alice@example.com"}
	bob   = domain.Subject{ID: "user-b", Username: "bob", Email: "bob@example.com"}
)

func strPtr(s string) *string { return &s }

func newTestContactService(t *testing.T) (*ContactService, *repository.MemoryContactRepository) {
	t.Helper()
	repo := repository.NewMemoryContactRepository()
	return NewContactService(ContactDependencies{ContactRepo: repo}), repo
}

func createContact(t *testing.T, svc *ContactService, owner domain.Subject, name string) *domain.Contact {
	t.Helper()
	c, err := svc.CreateContact(context.Background(), owner, ContactCreateInput{
		Name:  name,
		Email: name + "@example.com",
		Phone: "555-0100",
	})
	require.NoError(t, err)
	return c
}

type brokenContactRepo struct {
	repository.ContactRepository
}

func (brokenContactRepo) GetByID(context.Context, string) (*domain.Contact, error) {
	return nil, errors.New("connection reset")
}

func TestCreateContact_AssignsOwnerFromSubject(t *testing.T) {
	svc, _ := newTestContactService(t)

	c := createContact(t, svc, alice, "carol")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, alice.ID, c.OwnerID)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCreateContact_MissingFields(t *testing.T) {
	svc, _ := newTestContactService(t)

	_, err := svc.CreateContact(context.Background(), alice, ContactCreateInput{Name: "carol", Phone: " "})
	require.True(t, apperrors.IsKind(err, apperrors.KindMissingField), "got %v", err)
	assert.Equal(t, []string{"email", "phone"}, apperrors.ToDomainError(err).Details["fields"])
}

func TestListContacts_ScopedToOwner(t *testing.T) {
	svc, _ := newTestContactService(t)
	ctx := context.Background()

	createContact(t, svc, alice, "carol")
	createContact(t, svc, alice, "dave")
	createContact(t, svc, bob, "erin")

	aliceList, err := svc.ListContacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceList, 2)
	for _, c := range aliceList {
		assert.Equal(t, alice.ID, c.OwnerID)
	}

	bobList, err := svc.ListContacts(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, "erin", bobList[0].Name)

	empty, err := svc.ListContacts(ctx, domain.Subject{ID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetContact_OwnershipEnforced(t *testing.T) {
	svc, _ := newTestContactService(t)
	ctx := context.Background()
	c := createContact(t, svc, alice, "carol")

	got, err := svc.GetContact(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.GetContact(ctx, bob, c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "got %v", err)

	_, err = svc.GetContact(ctx, alice, "missing-id")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound), "got %v", err)
}

func TestGetContact_StoreFailure(t *testing.T) {
	svc := NewContactService(ContactDependencies{ContactRepo: brokenContactRepo{}})

	_, err := svc.GetContact(context.Background(), alice, "any")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal), "got %v", err)
}

func TestUpdateContact_PartialPatch(t *testing.T) {
	svc, _ := newTestContactService(t)
	ctx := context.Background()
	c := createContact(t, svc, alice, "carol")

	updated, err := svc.UpdateContact(ctx, alice, c.ID, domain.ContactPatch{Phone: strPtr(" 555-0199 ")})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, "carol", updated.Name)
	assert.Equal(t, c.Email, updated.Email)
	assert.Equal(t, alice.ID, updated.OwnerID)

	got, err := svc.GetContact(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)
}

func TestUpdateContact_ForbiddenLeavesRecordUntouched(t *testing.T) {
	svc, _ := newTestContactService(t)
	ctx := context.Background()
	c := createContact(t, svc, alice, "carol")

	_, err := svc.UpdateContact(ctx, bob, c.ID, domain.ContactPatch{Name: strPtr("hijacked")})
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "got %v", err)

	got, err := svc.GetContact(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Name)
	assert.Equal(t, alice.ID, got.OwnerID)
}

func TestUpdateContact_ForbiddenBeforeValidation(t *testing.T) {
	svc, _ := newTestContactService(t)
	c := createContact(t, svc, alice, "carol")

	_, err := svc.UpdateContact(context.Background(), bob, c.ID, domain.ContactPatch{Name: strPtr("")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "got %v", err)
}

func TestUpdateContact_EmptyValuesRejected(t *testing.T) {
	svc, _ := newTestContactService(t)
	c := createContact(t, svc, alice, "carol")

	_, err := svc.UpdateContact(context.Background(), alice, c.ID, domain.ContactPatch{Name: strPtr("  ")})
	require.True(t, apperrors.IsKind(err, apperrors.KindMissingField), "got %v", err)
	assert.Equal(t, []string{"name"}, apperrors.ToDomainError(err).Details["fields"])
}

func TestUpdateContact_NotFound(t *testing.T) {
	svc, _ := newTestContactService(t)

	_, err := svc.UpdateContact(context.Background(), alice, "missing-id", domain.ContactPatch{Name: strPtr("x")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound), "got %v", err)
}

func TestDeleteContact(t *testing.T) {
	svc, _ := newTestContactService(t)
	ctx := context.Background()
	c := createContact(t, svc, alice, "carol")

	_, err := svc.DeleteContact(ctx, bob, c.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "got %v", err)

	deleted, err := svc.DeleteContact(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
	assert.Equal(t, "carol", deleted.Name)

	_, err = svc.GetContact(ctx, alice, c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound), "got %v", err)

	_, err = svc.DeleteContact(ctx, alice, c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound), "got %v", err)
}

func TestContactService_LogsDenials(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	repo := repository.NewMemoryContactRepository()
	svc := NewContactService(ContactDependencies{ContactRepo: repo, Logger: zap.New(core)})
	c := createContact(t, svc, alice, "carol")

	_, err := svc.GetContact(context.Background(), bob, c.ID)
	require.Error(t, err)

	denials := logs.FilterMessage("ownership check denied").All()
	require.Len(t, denials, 1)
	assert.Equal(t, bob.ID, denials[0].ContextMap()["requester_id"])
}

func TestContactService_PublishesEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	record := func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventContactCreated, record)
	dispatcher.Subscribe(events.EventContactUpdated, record)
	dispatcher.Subscribe(events.EventContactDeleted, func(ctx context.Context, e events.Event) error {
		_ = record(ctx, e)
		return errors.New("handler failure does not fail the request")
	})

	svc := NewContactService(ContactDependencies{
		ContactRepo: repository.NewMemoryContactRepository(),
		Dispatcher:  dispatcher,
	})
	ctx := context.Background()

	c := createContact(t, svc, alice, "carol")
	_, err := svc.UpdateContact(ctx, alice, c.ID, domain.ContactPatch{Name: strPtr("caroline")})
	require.NoError(t, err)
	_, err = svc.DeleteContact(ctx, alice, c.ID)
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.EventContactCreated,
		events.EventContactUpdated,
		events.EventContactDeleted,
	}, seen)
}
