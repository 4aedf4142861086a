package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS teacher_aides (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			name           TEXT NOT NULL,
			qualifications TEXT,
			colour_hex     TEXT
		);

		CREATE TABLE IF NOT EXISTS absences (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			aide_id    INTEGER NOT NULL REFERENCES teacher_aides(id),
			start_date DATE NOT NULL,
			end_date   DATE NOT NULL,
			reason     TEXT
		);

		CREATE TABLE IF NOT EXISTS assignments (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id       INTEGER NOT NULL,
			task_title    TEXT NOT NULL,
			task_category TEXT,
			aide_id       INTEGER REFERENCES teacher_aides(id),
			date          DATE,
			start_time    TIME,
			end_time      TIME,
			status        TEXT NOT NULL DEFAULT 'UNASSIGNED'
			              CHECK(status IN ('UNASSIGNED', 'ASSIGNED', 'IN_PROGRESS', 'COMPLETE')),
			is_flexible   INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_assignments_date ON assignments(date);
		CREATE INDEX IF NOT EXISTS idx_assignments_aide_date ON assignments(aide_id, date);
		CREATE INDEX IF NOT EXISTS idx_assignments_status ON assignments(status);
		CREATE INDEX IF NOT EXISTS idx_absences_aide ON absences(aide_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
