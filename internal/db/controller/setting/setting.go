// Package setting provides CRUD operations for settings stored as named blobs.
// Settings are scoped by namespace, the empty namespace holds global settings.
package setting

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
)

const (
	nameQueryPattern = "namespace = ? AND name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to create/update a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func find(db *gorm.DB, namespace, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.Where(nameQueryPattern, namespace, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// Get retrieves a setting by namespace and name.
func Get(db *gorm.DB, namespace, name string) (*models.Setting, error) {
	return find(db, namespace, name)
}

// GetAll retrieves all settings of a namespace.
func GetAll(db *gorm.DB, namespace string) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	settings := []models.Setting{}

	result := db.Where("namespace = ?", namespace).Order("name").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Create creates a new setting in the database.
func Create(db *gorm.DB, namespace, name string, value []byte) (*models.Setting, error) {
	_, err := find(db, namespace, name)

	switch {
	case err == nil:
		return nil, ErrSettingAlreadyExists
	case !errors.Is(err, ErrSettingNotFound):
		return nil, err
	}

	setting := &models.Setting{
		Namespace: namespace,
		Name:      name,
		Value:     value,
	}

	if result := db.Create(setting); result.Error != nil {
		return nil, result.Error
	}

	return setting, nil
}

// Set creates or updates a setting (upsert operation).
func Set(db *gorm.DB, namespace, name string, value []byte) (*models.Setting, error) {
	setting, err := find(db, namespace, name)
	if errors.Is(err, ErrSettingNotFound) {
		return Create(db, namespace, name, value)
	}

	if err != nil {
		return nil, err
	}

	setting.Value = value
	if result := db.Save(setting); result.Error != nil {
		return nil, result.Error
	}

	return setting, nil
}

// Delete deletes a setting by namespace and name.
func Delete(db *gorm.DB, namespace, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.Where(nameQueryPattern, namespace, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
