package uniuri

import (
	"crypto/rand"
)

const (
	// NonceLen gives ~95 bits of entropy, well above the 8 characters SIWE requires.
	NonceLen = 16
	// SecretLen gives ~190 bits of entropy for api key secrets.
	SecretLen = 32
)

// Alphanumeric is the charset of every generated string, safe in SIWE nonces and bearer tokens.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxUnbiased is the largest byte value that maps onto the charset without modulo bias.
const maxUnbiased = 255 - (256 % len(Alphanumeric))

// Nonce returns a new SIWE nonce.
func Nonce() string {
	return New(NonceLen)
}

// Secret returns a new api key secret.
func Secret() string {
	return New(SecretLen)
}

// New returns a random alphanumeric string of length n.
// It panics when the system random source fails.
func New(n int) string {
	if n <= 0 {
		return ""
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) > maxUnbiased {
				continue
			}

			out = append(out, Alphanumeric[int(b)%len(Alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out)
}
