package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/chain"
	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/db/controller/apiuser"
	"github.com/GoAgora/go-agora/internal/db/controller/citizen"
	"github.com/GoAgora/go-agora/internal/tenant"
)

// Kind tells how a principal authenticated.
type Kind string

// Principal kinds.
const (
	KindJWT    Kind = "jwt"
	KindAPIKey Kind = "api_key"
)

// Principal is an authenticated caller.
type Principal struct {
	Kind Kind
	// Subject is the lowercase address for a JWT, the api user id for an api key.
	Subject string
	Scopes  []string
	Tenant  string
}

// Has reports whether the principal holds scope.
func (p *Principal) Has(scope string) bool {
	return HasScope(p.Scopes, scope)
}

// Service provides login and bearer token authentication.
type Service struct {
	db       *gorm.DB
	tokens   *Tokens
	nonces   *NonceStore
	verifier *Verifier
	domain   string
}

// NewService creates a new auth service. Nonces are kept in storage.
func NewService(db *gorm.DB, cfg config.Auth, storage fiber.Storage, chains chain.Source) *Service {
	nonces := NewNonceStore(storage, cfg.NonceTTL)

	return &Service{
		db:       db,
		tokens:   NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		nonces:   nonces,
		verifier: NewVerifier(chains, nonces),
		domain:   cfg.Domain,
	}
}

// Nonce issues a SIWE nonce.
func (s *Service) Nonce() (string, error) {
	return s.nonces.Issue()
}

// Login verifies a signed SIWE message and issues an access token for t.
// host is the expected domain when no domain is configured.
func (s *Service) Login(ctx context.Context, t *tenant.Tenant, host, message, signature string) (*AccessToken, error) {
	domain := s.domain
	if domain == "" {
		domain = host
	}

	msg, err := s.verifier.Verify(ctx, domain, message, signature)
	if err != nil {
		return nil, err
	}

	address := strings.ToLower(msg.GetAddress().Hex())

	scopes, err := s.scopesFor(t.Namespace, address)
	if err != nil {
		return nil, err
	}

	return s.tokens.Issue(Claims{
		Scope:   JoinScope(scopes),
		Address: address,
		ChainID: strconv.Itoa(msg.GetChainID()),
		Nonce:   msg.GetNonce(),
		Tenant:  t.Namespace,
	})
}

func (s *Service) scopesFor(namespace, address string) ([]string, error) {
	scopes := []string{ScopePublicReader}

	_, err := citizen.Get(s.db, namespace, address)

	switch {
	case err == nil:
		scopes = append(scopes, ScopeBadgeholder)
	case !errors.Is(err, citizen.ErrCitizenNotFound):
		return nil, fmt.Errorf("lookup citizen: %w", err)
	}

	return scopes, nil
}

// Authenticate resolves a bearer token for a request served for namespace.
func (s *Service) Authenticate(token, namespace string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	if _, _, err := apiuser.ParseKey(token); err == nil && strings.Count(token, ".") == 1 {
		u, err := apiuser.Authenticate(s.db, token)

		switch {
		case errors.Is(err, apiuser.ErrInvalidKey), errors.Is(err, apiuser.ErrAPIUserDisabled):
			return nil, ErrInvalidToken
		case err != nil:
			return nil, err
		}

		return &Principal{
			Kind:    KindAPIKey,
			Subject: strconv.FormatUint(u.ID, 10),
			Scopes:  append([]string{ScopePublicReader}, u.Scopes()...),
			Tenant:  namespace,
		}, nil
	}

	c, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	if c.Tenant != "" && c.Tenant != namespace {
		return nil, ErrTenantMismatch
	}

	return &Principal{
		Kind:    KindJWT,
		Subject: c.Subject,
		Scopes:  ParseScope(c.Scope),
		Tenant:  namespace,
	}, nil
}
