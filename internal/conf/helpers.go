package conf

import (
	"crypto/rand"
	"encoding/base64"
	"log"
)

// GenerateRandomSecret returns a 256-bit secret encoded as a URL-safe string.
// Used for session cookies when no secret is configured.
func GenerateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("Failed to generate random secret: %v", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
