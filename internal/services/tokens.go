package services

import (
	"crypto/rand"
	"encoding/base64"
)

const opaqueTokenBytes = 32

// newOpaqueToken returns an unguessable url-safe token with no embedded
// semantics. Uniqueness is backed by the database index on the token column.
func newOpaqueToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
