package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nightlife-sync/pkg/logger"

	_ "github.com/lib/pq"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	connectAttempts = 30
	connectBackoff  = 2 * time.Second
)

// Connect establishes a connection to PostgreSQL with retries.
func Connect(databaseURL string, log *logger.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < connectAttempts; i++ {
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			log.Warn("Failed to open database, retrying", "error", err, "backoff", connectBackoff)
			time.Sleep(connectBackoff)
			continue
		}

		if err = ping(db); err == nil {
			log.Info("Connected to PostgreSQL")
			return db, nil
		}

		_ = db.Close()
		log.Warn("Failed to ping database, retrying", "error", err, "backoff", connectBackoff)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}

// ConnectGorm opens a gorm handle on databaseURL with the same retry policy.
// Duplicate-key errors are translated to gorm.ErrDuplicatedKey.
func ConnectGorm(databaseURL string, log *logger.Logger) (*gorm.DB, error) {
	var err error

	for i := 0; i < connectAttempts; i++ {
		var db *gorm.DB
		if db, err = openGorm(gormpg.Open(databaseURL)); err == nil {
			log.Info("Connected to PostgreSQL (gorm)")
			return db, nil
		}

		log.Warn("Failed to open gorm connection, retrying", "error", err, "backoff", connectBackoff)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}

// openGorm opens and pings one pool, closing it again if the ping fails.
func openGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:       true,
		DisableAutomaticPing: true,
		Logger:               gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := ping(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
