package settings

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sternbridge/bullion-quotes/internal/models"
)

// Well-known setting keys.
const (
	KeySpotOffset = "spot_normalisation_offset"
)

// Store is a thin key/value layer over the settings table. Values are read
// at use time, not cached: an admin change takes effect on the next fetch.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{DB: db} }

// Get returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool, error) {
	var row models.Setting
	if err := s.DB.First(&row, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Value, true, nil
}

// Set upserts the value for key.
func (s *Store) Set(key, value string) error {
	row := models.Setting{Key: key, Value: value}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Float reads key as a float64, falling back to def when the key is absent
// or unparsable. Validation of new values belongs to the writer, not here.
func (s *Store) Float(key string, def float64) (float64, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, nil
	}
	return f, nil
}
