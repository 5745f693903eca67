package adapter

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Random defines an interface for random value generation to enable mocking
//
//go:generate mockgen -source=random.go -destination=../mocks/random.go -package=mocks -mock_names=Random=MockRandom
type Random interface {
	// Code returns a numeric string of exactly the given number of digits
	Code(digits int) (string, error)

	// Hex returns n random bytes encoded as lowercase hex
	Hex(n int) (string, error)

	// Uint64n returns a uniform random value in [0, max)
	Uint64n(max uint64) (uint64, error)
}

// RealRandom implements Random on top of crypto/rand. Activation and
// verification codes must not be guessable, so math/rand is not used.
type RealRandom struct{}

// NewRandom creates a new real random source
func NewRandom() Random {
	return &RealRandom{}
}

// Code returns a numeric string of exactly the given number of digits
func (r *RealRandom) Code(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// Hex returns n random bytes encoded as lowercase hex
func (r *RealRandom) Hex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Uint64n returns a uniform random value in [0, max)
func (r *RealRandom) Uint64n(max uint64) (uint64, error) {
	if max == 0 {
		return 0, fmt.Errorf("max must be positive")
	}
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(max))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random value: %w", err)
	}
	return n.Uint64(), nil
}
