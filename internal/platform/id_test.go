package platform

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_IsUUID(t *testing.T) {
	_, err := uuid.Parse(NewID())
	require.NoError(t, err)
}

func TestNewExternalID(t *testing.T) {
	id := NewExternalID()

	// 32 random bytes, base64url without padding.
	assert.Len(t, id, 43)
	assert.NotContains(t, id, "+")
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "=")

	assert.NotEqual(t, id, NewExternalID())
}

func TestNewToken(t *testing.T) {
	token := NewToken("sg_")
	assert.True(t, strings.HasPrefix(token, "sg_"))
	assert.Greater(t, len(token), 30)
	assert.NotEqual(t, token, NewToken("sg_"))
}
