package secret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	first, err := NewKey()
	require.NoError(t, err)
	second, err := NewKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "sk_"))
	assert.Len(t, first, 51)
	assert.NotEqual(t, first, second)
}

func TestGetHashAndCompare(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	hash, err := GetHash(key)
	require.NoError(t, err)
	assert.NotEqual(t, key, hash)

	assert.NoError(t, CompareHash(hash, key))
	assert.Error(t, CompareHash(hash, "sk_wrongkey"))
}
