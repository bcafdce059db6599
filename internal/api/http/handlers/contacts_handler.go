package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/contactkeeper/contact-service/internal/api/dto"
	"github.com/contactkeeper/contact-service/internal/auth"
	"github.com/contactkeeper/contact-service/internal/domain"
	"github.com/contactkeeper/contact-service/internal/service"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

// ContactsHandler manages the caller's contacts.
type ContactsHandler struct {
	service *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// ListContacts GET /api/contacts.
func (h *ContactsHandler) ListContacts(c *fiber.Ctx) error {
	subject, err := requireSubject(c)
	if err != nil {
		return err
	}
	contacts, err := h.service.ListContacts(c.UserContext(), subject)
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, dto.NewContactResponse(&contacts[i]))
	}
	return c.JSON(items)
}

// CreateContact POST /api/contacts.
func (h *ContactsHandler) CreateContact(c *fiber.Ctx) error {
	subject, err := requireSubject(c)
	if err != nil {
		return err
	}
	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.CreateContact(c.UserContext(), subject, service.ContactCreateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewContactResponse(contact))
}

// GetContact GET /api/contacts/:id.
func (h *ContactsHandler) GetContact(c *fiber.Ctx) error {
	subject, err := requireSubject(c)
	if err != nil {
		return err
	}
	contact, err := h.service.GetContact(c.UserContext(), subject, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContactResponse(contact))
}

// UpdateContact PUT /api/contacts/:id.
func (h *ContactsHandler) UpdateContact(c *fiber.Ctx) error {
	subject, err := requireSubject(c)
	if err != nil {
		return err
	}
	var req dto.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.UpdateContact(c.UserContext(), subject, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContactResponse(contact))
}

// DeleteContact DELETE /api/contacts/:id.
func (h *ContactsHandler) DeleteContact(c *fiber.Ctx) error {
	subject, err := requireSubject(c)
	if err != nil {
		return err
	}
	contact, err := h.service.DeleteContact(c.UserContext(), subject, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContactResponse(contact))
}

func requireSubject(c *fiber.Ctx) (domain.Subject, error) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok || subject.ID == "" {
		return domain.Subject{}, apperrors.NewUnauthenticated("user is not authorized", nil)
	}
	return subject, nil
}
