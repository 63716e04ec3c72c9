package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/settings"
)

// ConnectAndMigrate opens the database named by DATABASE_DSN and brings the
// schema up to date. Postgres DSNs get the full treatment (retry loop, SQL
// migrations when MIGRATIONS=1); anything else is opened as sqlite, which
// covers local development.
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if IsPostgresDSN(dsn) {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			log.Println("retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	log.Println("[DB] using DSN:", masked)

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); IsPostgresDSN(dsn) && (v == "1" || v == "true" || v == "yes") {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"quotes", "quote_items", "settings", "counters"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// Migrate runs gorm AutoMigrate for every model. Exported for tests.
func Migrate(db *gorm.DB) error {
	for _, m := range []interface{}{
		&models.User{}, &models.Setting{}, &models.Counter{}, &models.Quote{}, &models.QuoteItem{},
	} {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// seed creates the baseline settings row and a dev admin account when absent.
func seed(db *gorm.DB) {
	store := settings.NewStore(db)
	if _, ok, err := store.Get(settings.KeySpotOffset); err == nil && !ok {
		_ = store.Set(settings.KeySpotOffset, "0")
	}
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err == nil && count == 0 {
		hash, _ := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		db.Create(&models.User{Email: "admin@local", Password: string(hash), Name: "Dev Admin", Role: models.RoleAdmin})
	}
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
