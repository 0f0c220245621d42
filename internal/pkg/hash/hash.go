package hash

import "strings"

// Hash hashes a plaintext value and verifies a plaintext against a stored hash.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Password hashes new passwords with one algorithm and verifies stored hashes
// with whichever algorithm produced them, detected from the encoded prefix.
type Password struct {
	primary Hash
	argon   *Argon2id
	bcrypt  *Bcrypt
}

// NewPassword returns a password hasher. algorithm is "argon2id" or "bcrypt" (default).
func NewPassword(algorithm string, bcryptCost int, pepper string) *Password {
	p := &Password{
		argon:  NewArgon2id(pepper),
		bcrypt: NewBcrypt(bcryptCost, pepper),
	}

	p.primary = p.bcrypt
	if strings.EqualFold(algorithm, "argon2id") {
		p.primary = p.argon
	}

	return p
}

func (p *Password) Hash(plaintext string) ([]byte, error) {
	return p.primary.Hash(plaintext)
}

func (p *Password) Verify(hashed, plaintext string) bool {
	if strings.HasPrefix(hashed, "$argon2id$") {
		return p.argon.Verify(hashed, plaintext)
	}
	return p.bcrypt.Verify(hashed, plaintext)
}
