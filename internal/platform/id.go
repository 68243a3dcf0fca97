package platform

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

const externalIDBytes = 32

func NewID() string {
	return uuid.New().String()
}

// NewExternalID returns a URL-safe, cryptographically unpredictable token
// suitable for use as the ExternalId condition of a cross-account trust
// policy. It is generated once per connection and never regenerated.
func NewExternalID() string {
	b := make([]byte, externalIDBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// NewToken returns a random bearer token with the given prefix. The raw value
// is shown to the caller once; only its hash is stored.
func NewToken(prefix string) string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
