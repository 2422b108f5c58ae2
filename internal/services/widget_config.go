package services

import (
	"database/sql"
	"time"

	"github.com/tapfolio/widget-backend/internal/database"
	"github.com/tapfolio/widget-backend/internal/models"
)

const widgetConfigColumns = `id, card_index, size, display_mode, theme, update_frequency,
	show_profile_image, show_company_logo, show_qr_code,
	border_radius, tap_to_share, long_press_to_edit,
	is_active, created_at, updated_at`

// CreateWidgetConfig inserts a canonical widget configuration row.
// Timestamps are assigned here, not taken from the caller.
func CreateWidgetConfig(cfg *models.WidgetConfig) error {
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	_, err := database.PostgresDB.Exec(`
		INSERT INTO widget_configs (`+widgetConfigColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		cfg.ID, cfg.CardIndex, cfg.Size, cfg.DisplayMode, cfg.Theme, cfg.UpdateFrequency,
		cfg.ShowProfileImage, cfg.ShowCompanyLogo, cfg.ShowQRCode,
		cfg.BorderRadius, cfg.TapToShare, cfg.LongPressToEdit,
		cfg.IsActive, cfg.CreatedAt, cfg.UpdatedAt)
	return err
}

// GetWidgetConfig returns the config row for id, or (nil, nil) when absent.
func GetWidgetConfig(id string) (*models.WidgetConfig, error) {
	row := database.PostgresDB.QueryRow(`
		SELECT `+widgetConfigColumns+` FROM widget_configs WHERE id = $1`, id)

	cfg, err := scanWidgetConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListWidgetConfigs returns configs, optionally filtered to one card.
func ListWidgetConfigs(cardIndex *int) ([]models.WidgetConfig, error) {
	query := `SELECT ` + widgetConfigColumns + ` FROM widget_configs`
	args := []interface{}{}
	if cardIndex != nil {
		query += ` WHERE card_index = $1`
		args = append(args, *cardIndex)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.WidgetConfig
	for rows.Next() {
		cfg, err := scanWidgetConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

// UpdateWidgetConfig overwrites the row for cfg.ID. Returns false when no
// such row exists.
func UpdateWidgetConfig(cfg *models.WidgetConfig) (bool, error) {
	cfg.UpdatedAt = time.Now().UTC()

	res, err := database.PostgresDB.Exec(`
		UPDATE widget_configs SET
			card_index = $2, size = $3, display_mode = $4, theme = $5, update_frequency = $6,
			show_profile_image = $7, show_company_logo = $8, show_qr_code = $9,
			border_radius = $10, tap_to_share = $11, long_press_to_edit = $12,
			is_active = $13, updated_at = $14
		WHERE id = $1`,
		cfg.ID, cfg.CardIndex, cfg.Size, cfg.DisplayMode, cfg.Theme, cfg.UpdateFrequency,
		cfg.ShowProfileImage, cfg.ShowCompanyLogo, cfg.ShowQRCode,
		cfg.BorderRadius, cfg.TapToShare, cfg.LongPressToEdit,
		cfg.IsActive, cfg.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteWidgetConfig removes the row for id. Unknown ids are a no-op.
func DeleteWidgetConfig(id string) error {
	_, err := database.PostgresDB.Exec(`DELETE FROM widget_configs WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWidgetConfig(row rowScanner) (*models.WidgetConfig, error) {
	var cfg models.WidgetConfig
	err := row.Scan(
		&cfg.ID, &cfg.CardIndex, &cfg.Size, &cfg.DisplayMode, &cfg.Theme, &cfg.UpdateFrequency,
		&cfg.ShowProfileImage, &cfg.ShowCompanyLogo, &cfg.ShowQRCode,
		&cfg.BorderRadius, &cfg.TapToShare, &cfg.LongPressToEdit,
		&cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
