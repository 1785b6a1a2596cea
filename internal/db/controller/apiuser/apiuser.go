// Package apiuser manages the machine clients that call the api with a static key.
//
// A key has the form "<id>.<secret>". Only the Argon2id hash of the secret is stored,
// the full key is returned once by Create.
package apiuser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/uniuri"
)

var (
	// ErrInvalidKey is returned for a malformed key or a wrong secret.
	ErrInvalidKey = errors.New("invalid api key")
	// ErrAPIUserDisabled is returned when the key belongs to a disabled user.
	ErrAPIUserDisabled = errors.New("api user is disabled")
	// ErrAPIUserNotFound is returned when no user has the id.
	ErrAPIUserNotFound = errors.New("api user not found")
	// ErrNameEmpty is returned when creating a user without a name.
	ErrNameEmpty = errors.New("api user name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create adds an enabled api user and returns it with its key.
func Create(db *gorm.DB, name, email string, scopes []string) (*models.APIUser, string, error) {
	if db == nil {
		return nil, "", ErrDBNil
	}

	if strings.TrimSpace(name) == "" {
		return nil, "", ErrNameEmpty
	}

	secret := uniuri.Secret()

	hash, err := models.HashSecret(secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash api key: %w", err)
	}

	u := models.APIUser{
		Name:    name,
		Email:   email,
		KeyHash: hash,
		Scope:   strings.Join(scopes, " "),
		Enabled: true,
	}

	if err = db.Create(&u).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create api user: %w", err)
	}

	return &u, FormatKey(u.ID, secret), nil
}

// FormatKey joins the public id and the secret of a key.
func FormatKey(id uint64, secret string) string {
	return strconv.FormatUint(id, 10) + "." + secret
}

// ParseKey splits a key into id and secret.
func ParseKey(key string) (uint64, string, error) {
	idPart, secret, ok := strings.Cut(key, ".")
	if !ok || secret == "" {
		return 0, "", ErrInvalidKey
	}

	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidKey
	}

	return id, secret, nil
}

// Authenticate returns the enabled user owning key and records its use.
func Authenticate(db *gorm.DB, key string) (*models.APIUser, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	id, secret, err := ParseKey(key)
	if err != nil {
		return nil, err
	}

	u, err := Get(db, id)
	if errors.Is(err, ErrAPIUserNotFound) {
		return nil, ErrInvalidKey
	}

	if err != nil {
		return nil, err
	}

	if !u.VerifySecret(secret) {
		return nil, ErrInvalidKey
	}

	if !u.Enabled {
		return nil, ErrAPIUserDisabled
	}

	now := time.Now()
	u.LastUsedAt = &now

	if err = db.Model(u).Update("last_used_at", now).Error; err != nil {
		return nil, err
	}

	return u, nil
}

// Get retrieves a user by id.
func Get(db *gorm.DB, id uint64) (*models.APIUser, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.APIUser

	err := db.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAPIUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// SetEnabled enables or disables a user.
func SetEnabled(db *gorm.DB, id uint64, enabled bool) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.APIUser{}).Where("id = ?", id).Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrAPIUserNotFound
	}

	return nil
}

// List returns one page of api users ordered by id.
func List(db *gorm.DB, p pagination.Params) (pagination.Result[models.APIUser], error) {
	if db == nil {
		return pagination.Result[models.APIUser]{}, ErrDBNil
	}

	return pagination.Query[models.APIUser](db.Model(&models.APIUser{}).Order("id"), p)
}

// Count returns the number of api users.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64

	err := db.Model(&models.APIUser{}).Count(&n).Error

	return n, err
}
