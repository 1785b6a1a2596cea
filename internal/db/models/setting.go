// Package models contains database model definitions.
package models

// Setting represents a configuration setting stored in the database.
// Global settings use an empty namespace, tenant settings the tenant namespace.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Namespace string `gorm:"size:32;not null;default:'';uniqueIndex:idx_setting_ns_name"`
	Name      string `gorm:"size:100;not null;uniqueIndex:idx_setting_ns_name"`
	Value     []byte
}
