package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the marketplace tables when they do not exist yet.
// Statements are idempotent so the server can be restarted safely.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			public_id CHAR(36) NOT NULL UNIQUE,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			is_buyer TINYINT(1) NOT NULL DEFAULT 1,
			is_seller TINYINT(1) NOT NULL DEFAULT 1,
			is_admin TINYINT(1) NOT NULL DEFAULT 0,
			is_super_admin TINYINT(1) NOT NULL DEFAULT 0,
			is_blocked TINYINT(1) NOT NULL DEFAULT 0,
			token_version BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS auctions (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			item_id CHAR(36) NOT NULL UNIQUE,
			seller_id BIGINT UNSIGNED NOT NULL,
			item_title VARCHAR(255) NOT NULL,
			item_description TEXT NOT NULL,
			starting_bid DOUBLE NOT NULL,
			image_filename VARCHAR(255) NOT NULL DEFAULT '',
			start_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			end_time DATETIME NULL,
			is_approved TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_auctions_seller FOREIGN KEY (seller_id) REFERENCES users(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS bids (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			auction_id BIGINT UNSIGNED NOT NULL,
			bidder_id BIGINT UNSIGNED NOT NULL,
			bid_amount DOUBLE NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_bids_auction FOREIGN KEY (auction_id) REFERENCES auctions(id),
			CONSTRAINT fk_bids_bidder FOREIGN KEY (bidder_id) REFERENCES users(id),
			INDEX idx_bids_auction_amount (auction_id, bid_amount)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
