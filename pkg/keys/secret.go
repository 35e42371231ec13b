package keys

import (
	"crypto/rand"
	"math/big"
)

const (
	// SecretPrefix tags every secret this service issues.
	SecretPrefix = "kd-"

	secretLength   = 32
	secretAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateSecret produces a new bearer token: the scheme prefix plus 32
// characters of lowercase alphanumerics. Uniqueness is probabilistic
// and not checked against the store.
func GenerateSecret() (string, error) {
	alphabetLen := big.NewInt(int64(len(secretAlphabet)))

	buf := make([]byte, 0, len(SecretPrefix)+secretLength)
	buf = append(buf, SecretPrefix...)
	for i := 0; i < secretLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf = append(buf, secretAlphabet[n.Int64()])
	}

	return string(buf), nil
}
