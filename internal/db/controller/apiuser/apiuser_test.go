package apiuser

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/pagination"
)

func TestCreateAndAuthenticate(t *testing.T) {
	db := dbtest.Open(t)

	u, key, err := Create(db, "indexer", "ops@example.org", []string{"public_reader", "admin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"public_reader", "admin"}, u.Scopes())
	assert.True(t, u.Enabled)
	assert.NotContains(t, u.KeyHash, key)

	got, err := Authenticate(db, key)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastUsedAt)

	n, err := Count(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "no separator", key: "abc", wantErr: ErrInvalidKey},
		{name: "empty secret", key: "1.", wantErr: ErrInvalidKey},
		{name: "non numeric id", key: "x.secret", wantErr: ErrInvalidKey},
		{name: "unknown id", key: FormatKey(u.ID+1, "secret"), wantErr: ErrInvalidKey},
		{name: "wrong secret", key: FormatKey(u.ID, "secret"), wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Authenticate(db, tt.key)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.NoError(t, SetEnabled(db, u.ID, false))

	_, err = Authenticate(db, key)
	require.ErrorIs(t, err, ErrAPIUserDisabled)

	require.ErrorIs(t, SetEnabled(db, 999, true), ErrAPIUserNotFound)
}

func TestCreateValidation(t *testing.T) {
	db := dbtest.Open(t)

	_, _, err := Create(db, "  ", "", nil)
	require.ErrorIs(t, err, ErrNameEmpty)

	_, _, err = Create(nil, "x", "", nil)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestParseKey(t *testing.T) {
	id, secret, err := ParseKey(FormatKey(42, "s3cr3t.with.dots"))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "s3cr3t.with.dots", secret)
	assert.Equal(t, "42", strconv.FormatUint(id, 10))
}

func TestList(t *testing.T) {
	db := dbtest.Open(t)

	for _, name := range []string{"a", "b", "c"} {
		_, _, err := Create(db, name, "", nil)
		require.NoError(t, err)
	}

	page, err := List(db, pagination.New(2, 0))
	require.NoError(t, err)
	assert.True(t, page.Meta.HasNext)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "a", page.Data[0].Name)

	page, err = List(db, pagination.New(2, 2))
	require.NoError(t, err)
	assert.False(t, page.Meta.HasNext)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "c", page.Data[0].Name)
}
