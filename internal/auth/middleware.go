package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/tenant"
)

const localPrincipal = "auth.principal"

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}

	return strings.TrimSpace(token)
}

// RequireAuth creates Fiber middleware that requires a valid bearer token.
// The principal is stored in the request locals, see FromCtx.
func (s *Service) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := s.Authenticate(BearerToken(c.Get(fiber.HeaderAuthorization)), tenant.Current(c).Namespace)
		if err != nil {
			if isAuthError(err) {
				log.Debug().Err(err).Str("path", c.Path()).Msg("request not authenticated")
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}

			return fmt.Errorf("authenticate request: %w", err)
		}

		c.Locals(localPrincipal, p)

		return c.Next()
	}
}

// RequireScope creates Fiber middleware that requires the principal to hold scope.
// It must run after RequireAuth.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := FromCtx(c)
		if p == nil {
			return fiber.NewError(fiber.StatusUnauthorized, ErrNoToken.Error())
		}

		if !p.Has(scope) {
			log.Warn().Str("subject", p.Subject).Str("scope", scope).Msg("principal lacks required scope")
			return fiber.NewError(fiber.StatusForbidden, ErrScopeMismatch.Error())
		}

		return c.Next()
	}
}

// FromCtx returns the authenticated principal or nil.
func FromCtx(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(localPrincipal).(*Principal)
	return p
}

// ValidateAddressScope checks that the caller may act for address.
// Only a JWT issued to address or a principal with the admin scope may.
func ValidateAddressScope(c *fiber.Ctx, address string) error {
	p := FromCtx(c)
	if p == nil {
		return fiber.NewError(fiber.StatusUnauthorized, ErrNoToken.Error())
	}

	if p.Has(ScopeAdmin) {
		return nil
	}

	if p.Kind != KindJWT || !strings.EqualFold(p.Subject, address) {
		return fiber.NewError(fiber.StatusForbidden, "address does not match the authenticated address")
	}

	return nil
}

func isAuthError(err error) bool {
	for _, e := range []error{
		ErrNoToken, ErrInvalidToken, ErrTokenExpired, ErrTokenNoExpiry,
		ErrTokenNoScope, ErrScopeMismatch, ErrTenantMismatch,
	} {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
