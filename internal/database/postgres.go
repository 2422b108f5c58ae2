package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to the PostgreSQL database holding the canonical
// widget configurations managed by the in-app widget manager.
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates the widget-config tables if they don't exist.
func InitPostgresTables() error {
	queries := []string{
		// Canonical widget configurations. The KV widget record is the
		// minimal projection of one of these rows plus card contact data.
		`CREATE TABLE IF NOT EXISTS widget_configs (
			id UUID PRIMARY KEY,
			card_index INTEGER NOT NULL,
			size VARCHAR(16) NOT NULL,
			display_mode VARCHAR(16) NOT NULL,
			theme VARCHAR(16) NOT NULL,
			update_frequency VARCHAR(16) NOT NULL,
			show_profile_image BOOLEAN NOT NULL DEFAULT TRUE,
			show_company_logo BOOLEAN NOT NULL DEFAULT TRUE,
			show_qr_code BOOLEAN NOT NULL DEFAULT TRUE,
			border_radius INTEGER NOT NULL DEFAULT 12,
			tap_to_share BOOLEAN NOT NULL DEFAULT TRUE,
			long_press_to_edit BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_widget_configs_card_index ON widget_configs(card_index)`,
		`CREATE INDEX IF NOT EXISTS idx_widget_configs_is_active ON widget_configs(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_widget_configs_updated_at ON widget_configs(updated_at)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection.
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
