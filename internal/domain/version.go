package domain

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// NewVersion returns a fresh opaque version token. Tokens carry no ordering;
// equality against the stored value is the only meaningful comparison.
func NewVersion() []byte {
	u := uuid.New()
	return u[:]
}

// EncodeVersion renders a version token for transport in response bodies
// and the If-Match request header.
func EncodeVersion(version []byte) string {
	return base64.StdEncoding.EncodeToString(version)
}

// DecodeVersion parses a base64 version token received from a client.
func DecodeVersion(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrMissingVersion
	}
	version, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(version) == 0 {
		return nil, ErrMalformedVersion
	}
	return version, nil
}
