package random

import (
	"crypto/rand"
	"math/big"
)

// TokenAlphabet is the base36 alphabet used for opaque game tokens
const TokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Token returns an opaque base36 token of the given length
	Token(length int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// Token generates a random base36 token
func (r *CryptoRandom) Token(length int) string {
	if length <= 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = TokenAlphabet[r.Intn(len(TokenAlphabet))]
	}
	return string(result)
}
