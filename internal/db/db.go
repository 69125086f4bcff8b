package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"moodtracker/internal/model"
)

// Open returns a connected GORM DB instance for the given driver ("mysql" or "postgres").
// Duplicate-key violations surface as gorm.ErrDuplicatedKey.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates or updates the users and moods tables. When reset is set the
// tables are dropped first, moods before users because of the foreign key.
func Migrate(db *gorm.DB, reset bool) error {
	if reset {
		for _, table := range []interface{}{&model.Mood{}, &model.User{}} {
			if err := db.Migrator().DropTable(table); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}
	if err := db.AutoMigrate(&model.User{}, &model.Mood{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
