// Package handlertest mounts handlers on a tenant aware fiber app for tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/chain/chaintest"
	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/db/kvstore"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// Secret signs the access tokens of the test app.
var Secret = strings.Repeat("k", 32)

// App is a fiber app serving the handlers under test.
type App struct {
	*fiber.App
	Env *handler.Env
	// Mainnet and OP are the readers behind chain ids 1 and 10.
	Mainnet *chaintest.Reader
	OP      *chaintest.Reader

	t      *testing.T
	tokens *auth.Tokens
}

// New mounts services under the api path. The default tenant is optimism.
func New(t *testing.T, services ...handler.Service) *App {
	t.Helper()

	db := dbtest.Open(t)

	a := &App{
		Mainnet: chaintest.New(1),
		OP:      chaintest.New(10),
		t:       t,
		tokens:  auth.NewTokens(Secret, time.Hour),
	}

	chains := chaintest.Source{1: a.Mainnet, 10: a.OP}
	cfg := &config.Config{Auth: config.Auth{JWTSecret: Secret, TokenTTL: time.Hour, NonceTTL: time.Minute}}

	a.Env = &handler.Env{
		Cfg:    cfg,
		DB:     db,
		Chains: chains,
		Auth:   auth.NewService(db, cfg.Auth, kvstore.New(db), chains),
	}

	reg, err := tenant.NewRegistry(config.Tenants{}, config.Chain{})
	require.NoError(t, err)

	a.App = fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	a.Use(tenant.Middleware(reg, db))

	api := a.Group(handler.APIPath)
	for _, s := range services {
		require.NoError(t, s.Init(api, a.Env))
	}

	return a
}

// Token issues an access token for address on tenant namespace.
func (a *App) Token(namespace, address string, scopes ...string) string {
	a.t.Helper()

	tok, err := a.tokens.Issue(auth.Claims{
		Scope:   auth.JoinScope(scopes),
		Address: address,
		Tenant:  namespace,
	})
	require.NoError(a.t, err)

	return tok.AccessToken
}

// Request is a test request. Body is encoded as json unless it is nil.
type Request struct {
	Method string
	Path   string
	Tenant string
	Token  string
	Body   any
}

// Do runs r against the app and returns the status and body.
func (a *App) Do(r Request) (int, []byte) {
	a.t.Helper()

	if r.Method == "" {
		r.Method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		require.NoError(a.t, err)

		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(r.Method, handler.APIPath+r.Path, body)
	if r.Body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if r.Tenant != "" {
		req.Header.Set(tenant.HeaderTenant, r.Tenant)
	}

	if r.Token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+r.Token)
	}

	resp, err := a.Test(req, -1)
	require.NoError(a.t, err)

	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	return resp.StatusCode, out
}

// Get fetches path on the default tenant.
func (a *App) Get(path string) (int, []byte) {
	a.t.Helper()

	return a.Do(Request{Path: path})
}

// Decode unmarshals body into a T.
func Decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))

	return v
}
