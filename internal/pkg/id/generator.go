package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const (
	// APIKeyPrefix starts every organization API key
	APIKeyPrefix = "evk"
	// APIKeyPublicLength is the number of hex characters in the public part of a key
	APIKeyPublicLength = 16
	// APIKeySecretLength is the number of hex characters in the secret part of a key
	APIKeySecretLength = 32
)

var randReader io.Reader = rand.Reader

// NewUUID generates a new UUID v4
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ValidateUUID validates a UUID format
func ValidateUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ParseUUID parses and validates a UUID string
func ParseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// ParseUUIDOrNil parses a UUID string, returning uuid.Nil on error.
func ParseUUIDOrNil(id string) uuid.UUID {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return u
}

// APIKey is a freshly generated organization API key
type APIKey struct {
	PublicID string
	Secret   string
}

// String returns the full key as handed to the client, evk_<public>_<secret>
func (k APIKey) String() string {
	return APIKeyPrefix + "_" + k.PublicID + "_" + k.Secret
}

// Preview returns the last four characters of the secret
func (k APIKey) Preview() string {
	return k.Secret[len(k.Secret)-4:]
}

// NewAPIKey generates a new API key
func NewAPIKey() (APIKey, error) {
	public, err := randomHex(APIKeyPublicLength / 2)
	if err != nil {
		return APIKey{}, err
	}
	secret, err := randomHex(APIKeySecretLength / 2)
	if err != nil {
		return APIKey{}, err
	}
	return APIKey{PublicID: public, Secret: secret}, nil
}

// ParseAPIKey splits a full key into its public id and secret
func ParseAPIKey(key string) (APIKey, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 || parts[0] != APIKeyPrefix {
		return APIKey{}, fmt.Errorf("invalid api key format")
	}
	if len(parts[1]) != APIKeyPublicLength || !isHex(parts[1]) {
		return APIKey{}, fmt.Errorf("invalid api key public id")
	}
	if len(parts[2]) != APIKeySecretLength || !isHex(parts[2]) {
		return APIKey{}, fmt.Errorf("invalid api key secret")
	}
	return APIKey{PublicID: parts[1], Secret: parts[2]}, nil
}

// NewToken generates a URL-safe random token of n bytes (2n hex characters),
// used for invitations and refresh tokens
func NewToken(n int) (string, error) {
	return randomHex(n)
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}
