// Package toggle persists per tenant feature toggle overrides.
package toggle

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/controller/setting"
)

const (
	// SettingKeyToggles is the key used to store the toggle overrides of a namespace.
	SettingKeyToggles = "toggles"
)

// Overrides maps toggle names to their runtime value.
type Overrides map[string]bool

// Load loads the overrides of namespace. A namespace without overrides yields an empty map.
func Load(db *gorm.DB, namespace string) (Overrides, error) {
	o := Overrides{}

	s, err := setting.Get(db, namespace, SettingKeyToggles)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return o, nil
	}

	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(s.Value, &o); err != nil {
		return nil, err
	}

	return o, nil
}

// Save replaces the overrides of namespace.
func Save(db *gorm.DB, namespace string, o Overrides) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}

	_, err = setting.Set(db, namespace, SettingKeyToggles, data)

	return err
}

// Merge applies changes on top of the stored overrides and saves the result.
func Merge(db *gorm.DB, namespace string, changes Overrides) (Overrides, error) {
	o, err := Load(db, namespace)
	if err != nil {
		return nil, err
	}

	for name, enabled := range changes {
		o[name] = enabled
	}

	if err = Save(db, namespace, o); err != nil {
		return nil, err
	}

	return o, nil
}
