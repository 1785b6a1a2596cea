package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, setting := range settings {
		require.NoError(t, db.Create(&setting).Error, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	seedSettings(t, db, []models.Setting{
		{Namespace: "optimism", Name: "toggles", Value: []byte(`{"staking":true}`)},
		{Namespace: "ens", Name: "toggles", Value: []byte(`{"staking":false}`)},
		{Name: "bootstrap", Value: []byte("done")},
	})

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		namespace     string
		settingName   string
		expectedError error
		expectedValue []byte
	}{
		{name: "nil database", namespace: "optimism", settingName: "toggles", expectedError: ErrDBNil},
		{name: "empty name", dbParam: db, namespace: "optimism", expectedError: ErrSettingNameEmpty},
		{name: "unknown name", dbParam: db, namespace: "optimism", settingName: "nope", expectedError: ErrSettingNotFound},
		{name: "other namespace", dbParam: db, namespace: "uniswap", settingName: "toggles", expectedError: ErrSettingNotFound},
		{
			name:          "namespaced value",
			dbParam:       db,
			namespace:     "ens",
			settingName:   "toggles",
			expectedValue: []byte(`{"staking":false}`),
		},
		{
			name:          "global value",
			dbParam:       db,
			settingName:   "bootstrap",
			expectedValue: []byte("done"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setting, err := Get(tc.dbParam, tc.namespace, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(nil, "ens", "toggles", nil)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Create(db, "ens", "", nil)
	require.ErrorIs(t, err, ErrSettingNameEmpty)

	setting, err := Create(db, "ens", "toggles", []byte("{}"))
	require.NoError(t, err)
	assert.NotZero(t, setting.ID)

	_, err = Create(db, "ens", "toggles", []byte("{}"))
	require.ErrorIs(t, err, ErrSettingAlreadyExists)

	// same name in another namespace is a different setting
	_, err = Create(db, "optimism", "toggles", []byte("{}"))
	require.NoError(t, err)
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	created, err := Set(db, "ens", "toggles", []byte("v1"))
	require.NoError(t, err)

	updated, err := Set(db, "ens", "toggles", []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := Get(db, "ens", "toggles")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Value)

	_, err = Set(nil, "ens", "toggles", nil)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestGetAllAndDelete(t *testing.T) {
	db := setupTestDB(t)

	seedSettings(t, db, []models.Setting{
		{Namespace: "ens", Name: "b", Value: []byte("2")},
		{Namespace: "ens", Name: "a", Value: []byte("1")},
		{Namespace: "optimism", Name: "a", Value: []byte("3")},
	})

	all, err := GetAll(db, "ens")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)

	empty, err := GetAll(db, "uniswap")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, Delete(db, "ens", "a"))
	require.ErrorIs(t, Delete(db, "ens", "a"), ErrSettingNotFound)
	require.ErrorIs(t, Delete(db, "ens", ""), ErrSettingNameEmpty)
	require.ErrorIs(t, Delete(nil, "ens", "a"), ErrDBNil)

	_, err = Get(db, "optimism", "a")
	require.NoError(t, err)

	_, err = GetAll(nil, "ens")
	require.ErrorIs(t, err, ErrDBNil)
}
