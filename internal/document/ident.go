package document

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	idAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultIDLength  = 5
	DeleteCodeLength = 8

	// collisions tolerated at one length before the id grows by a character
	idAttemptsPerLength = 3
	maxIDLength         = 32

	MinCustomURLLength = 3
	MaxCustomURLLength = 50
)

var customURLPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ExistsFunc reports whether an id is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = alphabet[k.Int64()]
	}
	return string(b), nil
}

// GenerateID draws lowercase alphanumeric ids and pre-checks them with exists.
// After idAttemptsPerLength collisions at one length the id grows by one
// character. The pre-check is advisory; the store's unique constraint decides.
func GenerateID(ctx context.Context, exists ExistsFunc, length int) (string, error) {
	if length <= 0 {
		length = DefaultIDLength
	}
	for ; length <= maxIDLength; length++ {
		for attempt := 0; attempt < idAttemptsPerLength; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			id, err := randomString(idAlphabet, length)
			if err != nil {
				return "", err
			}
			taken, err := exists(ctx, id)
			if err != nil {
				return "", err
			}
			if !taken {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("no free id up to length %d", maxIDLength)
}

// GenerateDeleteCode returns an uppercase alphanumeric shared secret. Codes
// need not be unique.
func GenerateDeleteCode() (string, error) {
	return randomString(codeAlphabet, DeleteCodeLength)
}

// ValidateCustomURL accepts nil (the id is generated instead) or a slug of
// 3 to 50 ASCII letters, digits and hyphens.
func ValidateCustomURL(slug *string) bool {
	if slug == nil {
		return true
	}
	return validation.Validate(*slug,
		validation.Required,
		validation.Length(MinCustomURLLength, MaxCustomURLLength),
		validation.Match(customURLPattern),
	) == nil
}
