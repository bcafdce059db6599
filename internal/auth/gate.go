package auth

import (
	"github.com/contactkeeper/contact-service/internal/domain"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

// AuthorizeOwnerAction permits a read, update or delete on resource only when
// requesterID is its recorded owner. A nil resource is reported as not found
// before any ownership comparison takes place.
func AuthorizeOwnerAction(resource domain.Owned, requesterID string) error {
	if resource == nil {
		return apperrors.NewNotFound("resource", nil)
	}
	if requesterID == "" || resource.Owner() != requesterID {
		return apperrors.NewForbidden("user does not have permission to access this resource")
	}
	return nil
}
