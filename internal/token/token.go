// Package token generates the url-safe random identifiers and bearer
// secrets used for users and stories.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// IDBytes is the entropy of public identifiers (user_id, story_id).
	// 12 bytes encode to 16 url-safe characters.
	IDBytes = 12
	// SecretBytes is the entropy of bearer tokens. 64 bytes encode to 86
	// url-safe characters; large enough to make guessing infeasible.
	SecretBytes = 64
)

// URLSafe returns n random bytes encoded with the unpadded url-safe
// base64 alphabet, read from the platform CSPRNG.
func URLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewID returns a fresh candidate public identifier. Uniqueness is not
// guaranteed here; callers must insert under a unique constraint and
// retry on collision.
func NewID() (string, error) {
	return URLSafe(IDBytes)
}

// NewSecret returns a fresh bearer token.
func NewSecret() (string, error) {
	return URLSafe(SecretBytes)
}
