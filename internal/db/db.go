package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database handle used by the server wiring. Services take
// their own *gorm.DB so tests can run against isolated in-memory databases.
var DB *gorm.DB

// Init opens the database and runs auto migration for all models.
// An empty databasePath falls back to qboard.db.
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "qboard.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate creates or updates the schema for every model. Exposed separately
// so tests can migrate their own in-memory databases.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Post{},
		&Answer{},
		&Comment{},
		&Vote{},
		&PostFavorite{},
		&PostView{},
		&Tag{},
		&TagFollow{},
		&Entity{},
		&EntityFollow{},
		&Collection{},
		&CollectionPost{},
		&Attachment{},
		&GlobalStat{},
		&UserStat{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
