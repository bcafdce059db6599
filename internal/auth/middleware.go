package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/contactkeeper/contact-service/internal/domain"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

const (
	subjectKey   = "auth_subject"
	bearerPrefix = "Bearer "
)

// VerificationRecorder observes verifier outcomes.
type VerificationRecorder interface {
	RecordTokenVerification(result string)
}

// AuthMiddleware validates bearer tokens and attaches the verified subject to the request.
type AuthMiddleware struct {
	tokens   *TokenManager
	recorder VerificationRecorder
}

// NewAuthMiddleware constructs middleware. recorder may be nil.
func NewAuthMiddleware(tokens *TokenManager, recorder VerificationRecorder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, recorder: recorder}
}

// ParseBearer extracts the token material from an Authorization header value.
// Anything not starting with the literal "Bearer " is treated as absent.
func ParseBearer(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrTokenMissing
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

// Authenticate runs the full verification for a raw Authorization header value.
func (m *AuthMiddleware) Authenticate(header string) (domain.Subject, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return domain.Subject{}, err
	}
	return m.tokens.Verify(token)
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	subject, err := m.Authenticate(c.Get(fiber.HeaderAuthorization))
	m.record(err)
	if err != nil {
		return apperrors.NewUnauthenticated(unauthenticatedMessage(err), err)
	}

	c.Locals(subjectKey, subject)
	return c.Next()
}

func (m *AuthMiddleware) record(err error) {
	if m.recorder == nil {
		return
	}
	m.recorder.RecordTokenVerification(VerificationResult(err))
}

// VerificationResult names the verifier state reached for err.
func VerificationResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, ErrTokenMissing):
		return "absent"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "malformed"
	}
}

func unauthenticatedMessage(err error) string {
	if errors.Is(err, ErrTokenMissing) {
		return "token not provided or invalid"
	}
	return "user is not authorized"
}

// SubjectFromContext retrieves the authenticated subject.
func SubjectFromContext(c *fiber.Ctx) (domain.Subject, bool) {
	subject, ok := c.Locals(subjectKey).(domain.Subject)
	return subject, ok
}
