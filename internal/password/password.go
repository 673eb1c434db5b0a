// Package password turns plaintext passwords into one-way salted hashes.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords for storage and checks candidates against a
// stored hash.
type Hasher interface {
	Hash(plain string) (string, error)
	// Compare returns nil when plain matches hashed.
	Compare(hashed, plain string) error
}

// Bcrypt implements Hasher with bcrypt at a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher using cost as the bcrypt work factor
// ("salt rounds"). The cost must lie within bcrypt.MinCost..bcrypt.MaxCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int {
	return b.cost
}

// MaxLength is the number of password bytes bcrypt reads. Longer inputs
// are cut to this length before hashing and comparing.
const MaxLength = 72

func truncate(plain string) []byte {
	if len(plain) > MaxLength {
		return []byte(plain[:MaxLength])
	}
	return []byte(plain)
}

// Hash returns the bcrypt hash of plain. Only the first MaxLength bytes
// take part.
func (b *Bcrypt) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncate(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hashed), nil
}

// Compare checks plain against a hash produced by Hash.
func (b *Bcrypt) Compare(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), truncate(plain))
}
