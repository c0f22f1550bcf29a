package random

import (
	"crypto/rand"
	"github.com/myrjola/crimewatch/internal/errors"
	"math/big"
	"strings"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", errors.Wrap(err, "random letter index")
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// Digits returns n random decimal digits, leading zeros included.
func Digits(n uint) (string, error) {
	var b strings.Builder
	b.Grow(int(n))
	for range n {
		digit, err := rand.Int(rand.Reader, big.NewInt(10)) //nolint:mnd // decimal
		if err != nil {
			return "", errors.Wrap(err, "random digit")
		}
		b.WriteByte(byte('0' + digit.Int64()))
	}
	return b.String(), nil
}
