package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Migrate creates the schema when it does not exist yet.  Every statement
// is idempotent so it is safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createVenuesTable,
		createArtistsTable,
		createEventsTable,
		createEventArtistsTable,
		createPerformancesTable,
		createBookingsTable,
		createUnavailabilityTable,
		createNotificationsTable,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(100) NOT NULL,
	role ENUM('VENUE','ARTIST') NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createVenuesTable = `
CREATE TABLE IF NOT EXISTS venues (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	owner_user_id BIGINT UNSIGNED NOT NULL,
	name VARCHAR(200) NOT NULL,
	city VARCHAR(120) NOT NULL DEFAULT '',
	address VARCHAR(255) NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_venues_owner (owner_user_id),
	CONSTRAINT fk_venues_owner FOREIGN KEY (owner_user_id) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createArtistsTable = `
CREATE TABLE IF NOT EXISTS artists (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT UNSIGNED NOT NULL UNIQUE,
	name VARCHAR(200) NOT NULL,
	genre VARCHAR(100) NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT fk_artists_user FOREIGN KEY (user_id) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	slug VARCHAR(255) NOT NULL UNIQUE,
	description TEXT NOT NULL,
	creator_user_id BIGINT UNSIGNED NOT NULL,
	venue_id BIGINT UNSIGNED NULL,
	external_venue_name VARCHAR(255) NULL,
	external_venue_address VARCHAR(255) NULL,
	external_venue_city VARCHAR(120) NULL,
	external_venue_contact VARCHAR(255) NULL,
	event_date DATETIME NULL,
	end_date DATETIME NULL,
	total_hours DECIMAL(6,2) NULL,
	total_budget_cents BIGINT NULL,
	is_public BOOLEAN NOT NULL DEFAULT FALSE,
	status VARCHAR(32) NOT NULL DEFAULT 'DRAFT',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_events_venue_status (venue_id, status),
	KEY idx_events_creator (creator_user_id),
	CONSTRAINT fk_events_creator FOREIGN KEY (creator_user_id) REFERENCES users(id),
	CONSTRAINT fk_events_venue FOREIGN KEY (venue_id) REFERENCES venues(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createEventArtistsTable = `
CREATE TABLE IF NOT EXISTS event_artists (
	event_id BIGINT UNSIGNED NOT NULL,
	artist_id BIGINT UNSIGNED NOT NULL,
	confirmed BOOLEAN NOT NULL DEFAULT FALSE,
	fee_cents BIGINT NULL,
	PRIMARY KEY (event_id, artist_id),
	CONSTRAINT fk_ea_event FOREIGN KEY (event_id) REFERENCES events(id),
	CONSTRAINT fk_ea_artist FOREIGN KEY (artist_id) REFERENCES artists(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createPerformancesTable = `
CREATE TABLE IF NOT EXISTS performances (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	event_id BIGINT UNSIGNED NOT NULL,
	artist_id BIGINT UNSIGNED NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
	proposed_fee_cents BIGINT NULL,
	agreed_fee_cents BIGINT NULL,
	hours DECIMAL(6,2) NULL,
	venue_notes TEXT NULL,
	artist_notes TEXT NULL,
	initiated_by VARCHAR(8) NOT NULL DEFAULT 'ARTIST',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_performance_event_artist (event_id, artist_id),
	CONSTRAINT fk_perf_event FOREIGN KEY (event_id) REFERENCES events(id),
	CONSTRAINT fk_perf_artist FOREIGN KEY (artist_id) REFERENCES artists(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	artist_id BIGINT UNSIGNED NOT NULL,
	venue_id BIGINT UNSIGNED NULL,
	event_id BIGINT UNSIGNED NULL,
	event_date DATETIME NOT NULL,
	hours DECIMAL(6,2) NULL,
	note TEXT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_bookings_artist_date (artist_id, status, event_date),
	KEY idx_bookings_event (event_id),
	CONSTRAINT fk_bookings_artist FOREIGN KEY (artist_id) REFERENCES artists(id),
	CONSTRAINT fk_bookings_venue FOREIGN KEY (venue_id) REFERENCES venues(id),
	CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createUnavailabilityTable = `
CREATE TABLE IF NOT EXISTS artist_unavailability (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	artist_id BIGINT UNSIGNED NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	reason VARCHAR(255) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_unavail_artist (artist_id, start_date),
	CONSTRAINT fk_unavail_artist FOREIGN KEY (artist_id) REFERENCES artists(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	type VARCHAR(40) NOT NULL,
	user_id BIGINT UNSIGNED NOT NULL,
	event_id BIGINT UNSIGNED NULL,
	performance_id BIGINT UNSIGNED NULL,
	title VARCHAR(255) NOT NULL,
	message TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	read_at DATETIME NULL,
	action_url VARCHAR(512) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_notifications_user_unread (user_id, is_read, created_at),
	CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
