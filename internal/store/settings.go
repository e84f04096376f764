package store

import (
	"database/sql"
	"errors"
)

// SettingsRepository provides key-value storage for application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves a setting value by key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores a setting value, replacing any existing one.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes a setting by key.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return requireRow(result)
}
