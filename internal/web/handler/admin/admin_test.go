package admin_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/db/controller/apiuser"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler/admin"
	"github.com/GoAgora/go-agora/internal/web/handler/admin/apiusers"
	"github.com/GoAgora/go-agora/internal/web/handler/admin/toggles"
	"github.com/GoAgora/go-agora/internal/web/handler/handlertest"
)

const alice = "0x00000000000000000000000000000000000a11ce"

func TestAccess(t *testing.T) {
	a := handlertest.New(t, &admin.Service{})

	_, adminKey, err := apiuser.Create(a.Env.DB, "ops", "", []string{auth.ScopeAdmin})
	require.NoError(t, err)

	_, readerKey, err := apiuser.Create(a.Env.DB, "reader", "", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "garbage", token: "nope", status: http.StatusUnauthorized},
		{name: "reader key", token: readerKey, status: http.StatusForbidden},
		{name: "reader jwt", token: a.Token(tenant.Optimism, alice, auth.ScopePublicReader), status: http.StatusForbidden},
		{name: "admin key", token: adminKey, status: http.StatusOK},
		{name: "admin jwt", token: a.Token(tenant.Optimism, alice, auth.ScopeAdmin), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := a.Do(handlertest.Request{Path: "/admin/toggles", Token: tt.token})
			assert.Equal(t, tt.status, status, string(body))
		})
	}
}

func TestToggles(t *testing.T) {
	a := handlertest.New(t, &admin.Service{})
	token := a.Token(tenant.Uniswap, alice, auth.ScopeAdmin)

	status, body := a.Do(handlertest.Request{Method: http.MethodPut, Path: "/admin/toggles", Tenant: tenant.Uniswap, Token: token,
		Body: map[string]bool{tenant.ToggleStaking: true}})
	require.Equal(t, http.StatusOK, status, string(body))

	got := handlertest.Decode[toggles.Response](t, body)
	assert.True(t, got.Toggles[tenant.ToggleStaking])
	assert.True(t, got.Toggles[tenant.ToggleProposals], "built-in toggles are kept")
	assert.Equal(t, map[string]bool{tenant.ToggleStaking: true}, map[string]bool(got.Overrides))

	status, body = a.Do(handlertest.Request{Path: "/admin/toggles", Tenant: tenant.Uniswap, Token: token})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, handlertest.Decode[toggles.Response](t, body).Toggles[tenant.ToggleStaking], "override is applied on the next request")

	status, body = a.Do(handlertest.Request{Path: "/admin/toggles", Tenant: tenant.ENS, Token: a.Token(tenant.ENS, alice, auth.ScopeAdmin)})
	require.Equal(t, http.StatusOK, status)
	assert.False(t, handlertest.Decode[toggles.Response](t, body).Toggles[tenant.ToggleStaking], "overrides are per tenant")

	status, _ = a.Do(handlertest.Request{Method: http.MethodPut, Path: "/admin/toggles", Tenant: tenant.Uniswap, Token: token,
		Body: map[string]bool{}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIUsers(t *testing.T) {
	a := handlertest.New(t, &admin.Service{})
	token := a.Token(tenant.Optimism, alice, auth.ScopeAdmin)

	status, body := a.Do(handlertest.Request{Method: http.MethodPost, Path: "/admin/api-users", Token: token,
		Body: apiusers.CreateRequest{Name: "indexer", Email: "ops@example.org", Scopes: []string{auth.ScopeBadgeholder}}})
	require.Equal(t, http.StatusCreated, status, string(body))

	created := handlertest.Decode[apiusers.CreateResponse](t, body)
	require.NotEmpty(t, created.Key)
	assert.Equal(t, []string{auth.ScopeBadgeholder}, created.Scopes)
	assert.NotContains(t, string(body), "argon2id")

	id := strconv.FormatUint(created.ID, 10)

	status, _ = a.Do(handlertest.Request{Path: "/admin/toggles", Token: created.Key})
	assert.Equal(t, http.StatusForbidden, status, "the new key authenticates without admin rights")

	status, _ = a.Do(handlertest.Request{Method: http.MethodPost, Path: "/admin/api-users/" + id + "/disable", Token: token})
	require.Equal(t, http.StatusNoContent, status)

	status, _ = a.Do(handlertest.Request{Path: "/admin/toggles", Token: created.Key})
	assert.Equal(t, http.StatusUnauthorized, status, "disabled keys are rejected")

	status, body = a.Do(handlertest.Request{Path: "/admin/api-users/" + id, Token: token})
	require.Equal(t, http.StatusOK, status)
	assert.False(t, handlertest.Decode[apiusers.User](t, body).Enabled)

	status, body = a.Do(handlertest.Request{Path: "/admin/api-users", Token: token})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"name":"indexer"`)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "unknown user", method: http.MethodGet, path: "/admin/api-users/999", status: http.StatusNotFound},
		{name: "bad id", method: http.MethodPost, path: "/admin/api-users/x/enable", status: http.StatusBadRequest},
		{name: "enable unknown", method: http.MethodPost, path: "/admin/api-users/999/enable", status: http.StatusNotFound},
		{name: "no name", method: http.MethodPost, path: "/admin/api-users", body: apiusers.CreateRequest{}, status: http.StatusBadRequest},
		{name: "bad scope", method: http.MethodPost, path: "/admin/api-users", body: apiusers.CreateRequest{Name: "x", Scopes: []string{"root"}}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := a.Do(handlertest.Request{Method: tt.method, Path: tt.path, Token: token, Body: tt.body})
			assert.Equal(t, tt.status, status, string(body))
		})
	}
}
