package models

// KV is a key/value entry with an optional expiry, used for nonces and cached responses.
type KV struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte
	ExpiresAt int64 `gorm:"index"` // unix seconds, 0 never expires
}

// TableName returns the storage table name.
func (KV) TableName() string {
	return "kv_storage"
}
