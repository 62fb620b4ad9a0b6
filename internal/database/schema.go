package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the application tables when they do not exist yet.
// Statements are idempotent so the server can run it on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			first_name VARCHAR(100) NOT NULL DEFAULT '',
			last_name VARCHAR(100) NOT NULL DEFAULT '',
			role VARCHAR(16) NOT NULL DEFAULT 'coach',
			is_admin TINYINT(1) NOT NULL DEFAULT 0,
			disabled TINYINT(1) NOT NULL DEFAULT 0,
			is_active TINYINT(1) NOT NULL DEFAULT 0,
			welcomed TINYINT(1) NOT NULL DEFAULT 0,
			last_seen_at DATETIME NULL,
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			refresh_token VARCHAR(1024) NOT NULL,
			user_email VARCHAR(255) NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY refresh_tokens_token_uq (refresh_token(255)),
			KEY refresh_tokens_user_idx (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL DEFAULT '',
			starts_at DATETIME NOT NULL,
			ends_at DATETIME NOT NULL,
			pay_period INT NOT NULL DEFAULT 1,
			coach_id BIGINT UNSIGNED NULL,
			UNIQUE KEY events_start_uq (starts_at),
			KEY events_coach_idx (coach_id)
		)`,
		`CREATE TABLE IF NOT EXISTS recurring_time_slots (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			slot_time VARCHAR(16) NOT NULL,
			position INT NOT NULL,
			UNIQUE KEY recurring_time_slots_pos_uq (position)
		)`,
		`CREATE TABLE IF NOT EXISTS programming_materials (
			identifier VARCHAR(32) PRIMARY KEY,
			week_number INT NOT NULL DEFAULT 0,
			pdf_link VARCHAR(1024) NOT NULL DEFAULT '',
			video_links JSON NOT NULL,
			last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS api_keys (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			api_key VARCHAR(128) NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			coach_id BIGINT UNSIGNED NOT NULL,
			text TEXT NOT NULL,
			date DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_comments_date (date)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
