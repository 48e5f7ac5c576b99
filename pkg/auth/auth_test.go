package authentication

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicAuth(t *testing.T) {
	svc := NewBasicAuthService(&BasicAuthTConfig{AdminUsername: "admin", AdminPassword: "secret"})

	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	user, pass := svc.DecodeFromHeader(header)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "secret", pass)
	assert.True(t, svc.ValidateAdmin(user, pass))
	assert.False(t, svc.ValidateAdmin("admin", "wrong"))

	user, pass = svc.DecodeFromHeader("Basic !!!")
	assert.Empty(t, user)
	assert.Empty(t, pass)
}

func TestParseVoterToken(t *testing.T) {
	id, ok := ParseVoterToken("Bearer 550E8400-E29B-41D4-A716-446655440000")
	assert.True(t, ok)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id)

	for _, h := range []string{"", "Bearer", "Bearer nope", "Basic 550e8400-e29b-41d4-a716-446655440000"} {
		_, ok := ParseVoterToken(h)
		assert.False(t, ok, h)
	}
}
