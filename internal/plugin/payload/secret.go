// File: internal/plugin/payload/secret.go
package payload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// SecretLength is the number of random bytes behind each payload secret.
const SecretLength = 8

// SecretGenerator mints the one-time secret embedded into each generated
// payload. The secret doubles as the polling key on the callback server, so
// it must be unpredictable.
type SecretGenerator interface {
	Generate(size int) (string, error)
}

// RandomSecretGenerator is the production SecretGenerator, backed by the
// operating system CSPRNG. Secrets are upper-case hex, matching what the
// callback server expects.
type RandomSecretGenerator struct{}

// Generate returns a random secret of size bytes, hex encoded.
func (RandomSecretGenerator) Generate(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
