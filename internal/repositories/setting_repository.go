package repositories

import (
	"context"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingRepository struct {
	DB *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	setting := &models.SystemSetting{}
	err := r.DB.QueryRow(ctx,
		`SELECT setting_key, setting_value, updated_at
         FROM system_settings WHERE setting_key = $1`, key).Scan(
		&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (r *SettingRepository) List(ctx context.Context) ([]*models.SystemSetting, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT setting_key, setting_value, updated_at
         FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.SystemSetting
	for rows.Next() {
		setting := &models.SystemSetting{}
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, nil
}

func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO system_settings(setting_key, setting_value)
         VALUES($1, $2)
         ON CONFLICT (setting_key)
         DO UPDATE SET setting_value = $2, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}
