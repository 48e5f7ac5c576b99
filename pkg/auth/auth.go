package authentication

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

type IBasicAuthService interface {
	ValidateAdmin(username, password string) bool
	DecodeFromHeader(auth string) (string, string)
}

type BasicAuthTConfig struct {
	AdminUsername string

	AdminPassword string
}

type basicAuth struct {
	adminUsername string
	adminPassword string
}

func NewBasicAuthService(config *BasicAuthTConfig) IBasicAuthService {
	return &basicAuth{
		adminUsername: config.AdminUsername,
		adminPassword: config.AdminPassword,
	}
}

func (b *basicAuth) DecodeFromHeader(auth string) (string, string) {
	encoded := strings.TrimPrefix(auth, "Basic ")

	// Decode the Base64 string
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ""
	}

	// Split the decoded string into username and password
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}

	return parts[0], parts[1]
}

func (b *basicAuth) ValidateAdmin(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(b.adminUsername), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(b.adminPassword), []byte(password)) == 1
	return userOK && passOK
}

// ParseVoterToken extracts the voter id from an "Authorization: Bearer <uuid>"
// header. The id is returned in canonical form.
func ParseVoterToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	id, err := uuid.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
