package quotes

import (
	"crypto/rand"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sternbridge/bullion-quotes/internal/models"
)

const (
	quoteNumberCounter = "quote_number"
	quoteNumberPrefix  = "SBQ"

	shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	shortIDLength   = 8

	// shortIDMaxAttempts bounds the resample loop. At ~41 bits of id space
	// the loop terminates on the first draw in any realistic dataset.
	shortIDMaxAttempts = 50
)

// nextQuoteNumber allocates the next sequential number inside tx. The
// UPDATE takes a row lock, so concurrent creates serialize on the counter
// and never observe the same value; rolling back tx releases the number.
func nextQuoteNumber(tx *gorm.DB) (string, error) {
	row := models.Counter{Name: quoteNumberCounter}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return "", fmt.Errorf("ensure counter row: %w", err)
	}
	res := tx.Model(&models.Counter{}).
		Where("name = ?", quoteNumberCounter).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return "", fmt.Errorf("increment counter: %w", res.Error)
	}
	var current models.Counter
	if err := tx.First(&current, "name = ?", quoteNumberCounter).Error; err != nil {
		return "", fmt.Errorf("read counter: %w", err)
	}
	return fmt.Sprintf("%s-%06d", quoteNumberPrefix, current.Value), nil
}

// shortIDByteLimit is the largest multiple of the alphabet size that fits
// in a byte. Draws at or above it are discarded, so every character of the
// alphabet is equally likely.
const shortIDByteLimit = byte(256 - 256%len(shortIDAlphabet))

func randomShortID() (string, error) {
	id := make([]byte, 0, shortIDLength)
	buf := make([]byte, shortIDLength)
	for len(id) < shortIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= shortIDByteLimit || len(id) == shortIDLength {
				continue
			}
			id = append(id, shortIDAlphabet[int(b)%len(shortIDAlphabet)])
		}
	}
	return string(id), nil
}

// newShortID draws 8-character ids from the lowercase-alphanumeric alphabet
// until one passes the injected uniqueness check. ~5 bits/char gives enough
// space that collisions are rare; the retry loop absorbs the rest.
func newShortID(taken func(id string) (bool, error)) (string, error) {
	for attempt := 0; attempt < shortIDMaxAttempts; attempt++ {
		candidate, err := randomShortID()
		if err != nil {
			return "", err
		}
		inUse, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("check short id: %w", err)
		}
		if !inUse {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique short id after %d attempts", shortIDMaxAttempts)
}

// shortIDTaken builds the uniqueness check against the quotes table for use
// inside the create transaction.
func shortIDTaken(tx *gorm.DB) func(string) (bool, error) {
	return func(id string) (bool, error) {
		var count int64
		if err := tx.Model(&models.Quote{}).Where("short_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
}
