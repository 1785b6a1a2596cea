package citizens_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler/citizens"
	"github.com/GoAgora/go-agora/internal/web/handler/handlertest"
)

const alice = "0x00000000000000000000000000000000000a11ce"

func TestCitizens(t *testing.T) {
	a := handlertest.New(t, &citizens.Service{})

	dbtest.Seed(t, a.Env.DB,
		models.Citizen{Namespace: tenant.Optimism, Address: alice, Type: "USER"},
		models.Citizen{Namespace: tenant.Optimism, Address: "0x0000000000000000000000000000000000000b0b", Type: "CHAIN"},
	)

	status, body := a.Get("/citizens?limit=1")
	require.Equal(t, http.StatusOK, status, string(body))

	got := handlertest.Decode[struct {
		Meta struct {
			HasNext bool `json:"has_next"`
		} `json:"meta"`
		Data []models.Citizen `json:"data"`
	}](t, body)
	assert.True(t, got.Meta.HasNext)
	assert.Len(t, got.Data, 1)

	status, body = a.Get("/citizens/" + alice)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "USER", handlertest.Decode[models.Citizen](t, body).Type)

	status, _ = a.Get("/citizens/0x0000000000000000000000000000000000000c0c")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.Do(handlertest.Request{Path: "/citizens", Tenant: tenant.Uniswap})
	assert.Equal(t, http.StatusNotFound, status)
}
