package postgres

import (
	"database/sql"
	"fmt"

	"nightlife-sync/pkg/logger"
)

// RunMigrations executes the ordered schema statements for service.
func RunMigrations(db *sql.DB, service string, log *logger.Logger) error {
	for i, m := range getServiceMigrations(service) {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d for %s: %w", i, service, err)
		}
	}
	log.Info("Migrations completed", "service", service)
	return nil
}

const idempotencyKeysTable = `CREATE TABLE IF NOT EXISTS idempotency_keys (
	event_id VARCHAR(36) PRIMARY KEY,
	processed_at TIMESTAMP NOT NULL DEFAULT NOW()
)`

func getServiceMigrations(service string) []string {
	api := []string{
		`CREATE TABLE IF NOT EXISTS user_preferences (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			push_notifications BOOLEAN NOT NULL DEFAULT TRUE,
			email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
			sms_notifications BOOLEAN NOT NULL DEFAULT FALSE,
			plan_reminders BOOLEAN NOT NULL DEFAULT TRUE,
			notification_type VARCHAR(16) NOT NULL DEFAULT 'all'
				CHECK (notification_type IN ('all', 'friends', 'none')),
			theme_mode VARCHAR(16) NOT NULL DEFAULT 'system'
				CHECK (theme_mode IN ('light', 'dark', 'system')),
			distance_unit VARCHAR(8) NOT NULL DEFAULT 'mi'
				CHECK (distance_unit IN ('mi', 'km')),
			language VARCHAR(35) NOT NULL DEFAULT 'en',
			auto_checkin BOOLEAN NOT NULL DEFAULT FALSE,
			search_radius_mi INTEGER NOT NULL DEFAULT 25
				CHECK (search_radius_mi BETWEEN 1 AND 100),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_preferences_user_id ON user_preferences (user_id)`,
	}

	switch service {
	case "api":
		return api
	case "notifications":
		return []string{
			idempotencyKeysTable,
			`CREATE TABLE IF NOT EXISTS plan_notifications (
				id SERIAL PRIMARY KEY,
				event_id VARCHAR(36) NOT NULL,
				correlation_id VARCHAR(36),
				event_type VARCHAR(50) NOT NULL,
				plan_id VARCHAR(36) NOT NULL,
				actor_id VARCHAR(36),
				city_id VARCHAR(36) NOT NULL,
				venue_id VARCHAR(36),
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			)`,
		}
	case "analytics":
		return []string{
			idempotencyKeysTable,
			`CREATE TABLE IF NOT EXISTS plan_metrics (
				id SERIAL PRIMARY KEY,
				metric_date DATE NOT NULL,
				city_id VARCHAR(36) NOT NULL,
				event_type VARCHAR(50) NOT NULL,
				count INTEGER NOT NULL DEFAULT 0,
				UNIQUE(metric_date, city_id, event_type)
			)`,
		}
	default:
		return api
	}
}
