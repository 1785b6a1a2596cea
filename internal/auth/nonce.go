package auth

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GoAgora/go-agora/internal/db/kvstore"
	"github.com/GoAgora/go-agora/internal/uniuri"
)

const noncePrefix = "siwe:nonce:"

// NonceStore keeps issued SIWE nonces until they are used or expire.
type NonceStore struct {
	storage fiber.Storage
	ttl     time.Duration

	// mu serializes Consume on storages without kvstore.Taker.
	mu sync.Mutex
}

// NewNonceStore returns a store keeping nonces in storage for ttl.
func NewNonceStore(storage fiber.Storage, ttl time.Duration) *NonceStore {
	if storage == nil {
		panic("storage is nil")
	}

	return &NonceStore{storage: storage, ttl: ttl}
}

// Issue creates and remembers a new nonce.
func (s *NonceStore) Issue() (string, error) {
	n := uniuri.Nonce()

	if err := s.storage.Set(noncePrefix+n, []byte{1}, s.ttl); err != nil {
		return "", err
	}

	return n, nil
}

// Consume forgets nonce and reports whether it was valid.
// A nonce is accepted at most once, also under concurrent calls.
func (s *NonceStore) Consume(nonce string) (bool, error) {
	if nonce == "" {
		return false, nil
	}

	if taker, ok := s.storage.(kvstore.Taker); ok {
		return taker.Take(noncePrefix + nonce)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.storage.Get(noncePrefix + nonce)
	if err != nil {
		return false, err
	}

	if len(v) == 0 {
		return false, nil
	}

	return true, s.storage.Delete(noncePrefix + nonce)
}
