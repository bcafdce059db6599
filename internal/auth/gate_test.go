package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contactkeeper/contact-service/internal/domain"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

func TestAuthorizeOwnerAction(t *testing.T) {
	contact := &domain.Contact{ID: "c-1", OwnerID: "user-a"}

	assert.NoError(t, AuthorizeOwnerAction(contact, "user-a"))

	err := AuthorizeOwnerAction(contact, "user-b")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = AuthorizeOwnerAction(contact, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = AuthorizeOwnerAction(nil, "user-a")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
