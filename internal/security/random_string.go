package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Alphabet is the set of characters a random string is drawn from.
type Alphabet string

// PasswordAlphabet leaves out characters that are easy to misread when a
// temporary password is copied from a terminal (0/O, 1/l/I).
const PasswordAlphabet Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

var (
	errNegativeLength = errors.New("security: length must be non-negative")
	errEmptyAlphabet  = errors.New("security: alphabet must not be empty")
)

// Random returns an unbiased string of length characters read from
// crypto/rand.
func (alphabet Alphabet) Random(length int) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}
	return string(value), nil
}
