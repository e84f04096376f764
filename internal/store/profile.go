package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile represents a named tuning profile stored in the database.
type Profile struct {
	ID               string
	Name             string
	Active           bool
	TiltSensitivity  float64
	ChannelSmoothing float64
	LipSyncGain      float64
	ClickCooldownMs  int
	SwipeCooldownMs  int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileRepository provides CRUD operations for tuning profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile. An empty ID is assigned a fresh UUID.
func (r *ProfileRepository) Create(p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (id, name, active, tilt_sensitivity, channel_smoothing,
		                       lip_sync_gain, click_cooldown_ms, swipe_cooldown_ms,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Active, p.TiltSensitivity, p.ChannelSmoothing,
		p.LipSyncGain, p.ClickCooldownMs, p.SwipeCooldownMs, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, active, tilt_sensitivity, channel_smoothing,
		        lip_sync_gain, click_cooldown_ms, swipe_cooldown_ms, created_at, updated_at
		 FROM profiles WHERE id = ?`, id))
}

// GetActive retrieves the currently active profile.
func (r *ProfileRepository) GetActive() (*Profile, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, active, tilt_sensitivity, channel_smoothing,
		        lip_sync_gain, click_cooldown_ms, swipe_cooldown_ms, created_at, updated_at
		 FROM profiles WHERE active = 1 LIMIT 1`))
}

func (r *ProfileRepository) scanOne(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Name, &p.Active, &p.TiltSensitivity, &p.ChannelSmoothing,
		&p.LipSyncGain, &p.ClickCooldownMs, &p.SwipeCooldownMs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all profiles.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT id, name, active, tilt_sensitivity, channel_smoothing,
		        lip_sync_gain, click_cooldown_ms, swipe_cooldown_ms, created_at, updated_at
		 FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		err := rows.Scan(&p.ID, &p.Name, &p.Active, &p.TiltSensitivity, &p.ChannelSmoothing,
			&p.LipSyncGain, &p.ClickCooldownMs, &p.SwipeCooldownMs, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update updates an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, tilt_sensitivity = ?, channel_smoothing = ?,
		        lip_sync_gain = ?, click_cooldown_ms = ?, swipe_cooldown_ms = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.TiltSensitivity, p.ChannelSmoothing,
		p.LipSyncGain, p.ClickCooldownMs, p.SwipeCooldownMs, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetActive marks the given profile active and deactivates all others.
func (r *ProfileRepository) SetActive(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE profiles SET active = 0 WHERE active = 1`); err != nil {
		return err
	}
	result, err := tx.Exec(`UPDATE profiles SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a profile and its parameter aliases.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// GetAliases returns the profile's parameter overrides as channel → name.
func (r *ProfileRepository) GetAliases(profileID string) (map[string]string, error) {
	rows, err := r.db.Query(
		`SELECT channel, parameter FROM param_aliases WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var channel, parameter string
		if err := rows.Scan(&channel, &parameter); err != nil {
			return nil, err
		}
		aliases[channel] = parameter
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return aliases, nil
}

// SetAlias stores or replaces the preferred parameter name for one channel.
func (r *ProfileRepository) SetAlias(profileID, channel, parameter string) error {
	_, err := r.db.Exec(
		`INSERT INTO param_aliases (profile_id, channel, parameter) VALUES (?, ?, ?)
		 ON CONFLICT(profile_id, channel) DO UPDATE SET parameter = excluded.parameter`,
		profileID, channel, parameter,
	)
	return err
}

// DeleteAlias removes one channel override.
func (r *ProfileRepository) DeleteAlias(profileID, channel string) error {
	result, err := r.db.Exec(
		`DELETE FROM param_aliases WHERE profile_id = ? AND channel = ?`,
		profileID, channel,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
