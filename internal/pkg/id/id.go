package id

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// Generate creates a random ID (12 characters, URL-safe). Used for a
// session's identity when a transport connects anonymously.
func Generate() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return strings.ToLower(base32.StdEncoding.EncodeToString(bytes))[:12]
}
