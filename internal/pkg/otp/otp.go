package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/pquerna/otp"
)

// Generator produces numeric one-time codes.
type Generator interface {
	Generate() (string, error)
	Valid(code string) bool
}

// Numeric generates codes whose digits are each drawn uniformly from 0-9.
// Codes may start with zeros and are not unique.
type Numeric struct {
	digits otp.Digits
	max    *big.Int
	rand   io.Reader
}

// NewNumeric returns a generator for 6 or 8 digit codes. Any other value falls back to 6.
func NewNumeric(digits otp.Digits) *Numeric {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	limit := big.NewInt(1)
	for range digits.Length() {
		limit.Mul(limit, big.NewInt(10))
	}

	return &Numeric{digits: digits, max: limit, rand: rand.Reader}
}

// Generate draws a uniform integer in [0, 10^digits) and zero pads it, which
// is the same as drawing every digit independently.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.rand, n.max)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	return n.digits.Format(int32(v.Int64())), nil
}

// Valid reports whether code has the expected length and only ASCII digits.
func (n *Numeric) Valid(code string) bool {
	if len(code) != n.digits.Length() {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
