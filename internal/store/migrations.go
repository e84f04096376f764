package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - stores named tuning profiles
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			active INTEGER NOT NULL DEFAULT 0,
			tilt_sensitivity REAL NOT NULL DEFAULT 15.0,
			channel_smoothing REAL NOT NULL DEFAULT 0.3,
			lip_sync_gain REAL NOT NULL DEFAULT 2.0,
			click_cooldown_ms INTEGER NOT NULL DEFAULT 500,
			swipe_cooldown_ms INTEGER NOT NULL DEFAULT 800,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Parameter aliases table - per-profile avatar parameter overrides,
		// one preferred parameter name per expression channel
		`CREATE TABLE IF NOT EXISTS param_aliases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			channel TEXT NOT NULL,
			parameter TEXT NOT NULL,
			UNIQUE(profile_id, channel)
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_param_aliases_profile_id ON param_aliases(profile_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
