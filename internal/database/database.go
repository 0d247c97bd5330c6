package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to PostgreSQL...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('courier', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create platforms lookup table
		`CREATE TABLE IF NOT EXISTS platforms (
			platform_id SERIAL PRIMARY KEY,
			platform_code TEXT NOT NULL UNIQUE
		)`,

		// Create shifts table (one open shift per user: end_at IS NULL)
		`CREATE TABLE IF NOT EXISTS shifts (
			shift_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			start_at TIMESTAMPTZ,
			end_at TIMESTAMPTZ,
			shift_date TEXT,
			odometer_start DOUBLE PRECISION,
			odometer_end DOUBLE PRECISION,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create deliveries table; the primary key is the entry's stable
		// local id so repeated pushes upsert instead of duplicating
		`CREATE TABLE IF NOT EXISTS deliveries (
			delivery_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			shift_id TEXT,
			delivery_label TEXT NOT NULL,
			accepted_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			duration_text TEXT,
			platform_id INT,
			is_checked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (shift_id) REFERENCES shifts(shift_id) ON DELETE SET NULL,
			FOREIGN KEY (platform_id) REFERENCES platforms(platform_id) ON DELETE SET NULL
		)`,

		// Create earnings table (append-only historical log, one row per
		// platform per push)
		`CREATE TABLE IF NOT EXISTS earnings (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			shift_id TEXT,
			platform_id INT NOT NULL,
			earnings_date TEXT NOT NULL,
			delivery_pay NUMERIC(10,2) NOT NULL DEFAULT 0,
			tips NUMERIC(10,2) NOT NULL DEFAULT 0,
			adjustment_pay NUMERIC(10,2) NOT NULL DEFAULT 0,
			total NUMERIC(10,2) NOT NULL DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (shift_id) REFERENCES shifts(shift_id) ON DELETE SET NULL,
			FOREIGN KEY (platform_id) REFERENCES platforms(platform_id) ON DELETE CASCADE
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android', 'web')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_user_id ON shifts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_open ON shifts(user_id) WHERE end_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_user_id ON deliveries(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_accepted_at ON deliveries(accepted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_shift_id ON deliveries(shift_id)`,
		`CREATE INDEX IF NOT EXISTS idx_earnings_user_id ON earnings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_earnings_date ON earnings(earnings_date)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Printf("✓ Ran %d migrations", len(migrations))
	return nil
}
