package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionRoundTrip(t *testing.T) {
	v := NewVersion()
	require.NotEmpty(t, v)

	decoded, err := DecodeVersion(EncodeVersion(v))
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestNewVersion_Distinct(t *testing.T) {
	assert.NotEqual(t, NewVersion(), NewVersion())
}

func TestDecodeVersion_Missing(t *testing.T) {
	_, err := DecodeVersion("")
	assert.ErrorIs(t, err, ErrMissingVersion)
}

func TestDecodeVersion_Malformed(t *testing.T) {
	_, err := DecodeVersion("!!! not base64 !!!")
	assert.ErrorIs(t, err, ErrMalformedVersion)
}
