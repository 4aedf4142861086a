// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aideroster/aideroster/internal/roster"
)

// SQLite implements roster.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// The replace transaction updates two rows; a single writer keeps
	// SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

const assignmentColumns = `id, task_id, task_title, task_category, aide_id, date, start_time, end_time, status, is_flexible`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*roster.Assignment, error) {
	var (
		a        roster.Assignment
		category sql.NullString
		aideID   sql.NullInt64
		date     sql.NullString
		start    sql.NullString
		end      sql.NullString
	)

	err := row.Scan(
		&a.ID,
		&a.TaskID,
		&a.TaskTitle,
		&category,
		&aideID,
		&date,
		&start,
		&end,
		&a.Status,
		&a.IsFlexible,
	)
	if err != nil {
		return nil, err
	}

	a.TaskCategory = category.String
	if aideID.Valid {
		a.AideID = &aideID.Int64
	}
	// SQLite may return DATE columns with a time suffix; keep the date part.
	if date.Valid && len(date.String) >= 10 {
		a.Date = date.String[:10]
	}
	a.StartTime = start.String
	a.EndTime = end.String

	return &a, nil
}

// nullable maps empty strings to NULL so unassigned rows store real NULLs.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateAssignment adds a new assignment and fills in its ID.
func (s *SQLite) CreateAssignment(ctx context.Context, a *roster.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO assignments (
			task_id, task_title, task_category, aide_id, date, start_time, end_time, status, is_flexible
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var aideID any
	if a.AideID != nil {
		aideID = *a.AideID
	}

	result, err := s.db.ExecContext(ctx, query,
		a.TaskID,
		a.TaskTitle,
		nullable(a.TaskCategory),
		aideID,
		nullable(a.Date),
		nullable(a.StartTime),
		nullable(a.EndTime),
		a.Status,
		a.IsFlexible,
	)
	if err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	a.ID = id

	return nil
}

// GetAssignment retrieves an assignment by ID.
func (s *SQLite) GetAssignment(ctx context.Context, id int64) (*roster.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`

	a, err := scanAssignment(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, roster.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying assignment: %w", err)
	}
	return a, nil
}

// UpdateAssignment replaces an assignment's mutable fields and returns the
// stored record.
func (s *SQLite) UpdateAssignment(ctx context.Context, a *roster.Assignment) (*roster.Assignment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE assignments
		SET aide_id = ?, date = ?, start_time = ?, end_time = ?, status = ?
		WHERE id = ?
	`

	var aideID any
	if a.AideID != nil {
		aideID = *a.AideID
	}

	result, err := s.db.ExecContext(ctx, query,
		aideID,
		nullable(a.Date),
		nullable(a.StartTime),
		nullable(a.EndTime),
		a.Status,
		a.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating assignment: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, roster.ErrAssignmentNotFound
	}

	return s.GetAssignment(ctx, a.ID)
}

// ListAssignments returns assignments whose date falls in [start, end], plus
// all unassigned records. Empty bounds mean no range filter.
func (s *SQLite) ListAssignments(ctx context.Context, start, end string) ([]*roster.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	var args []any
	if start != "" && end != "" {
		query += ` WHERE status = 'UNASSIGNED' OR (date >= ? AND date <= ?)`
		args = append(args, start, end)
	}
	query += ` ORDER BY date, start_time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*roster.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		list = append(list, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}

	return list, nil
}

// Two time ranges overlap if: start1 < end2 AND start2 < end1.
const conflictQuery = `
	SELECT ` + assignmentColumns + `
	FROM assignments
	WHERE aide_id = ?
	  AND date = ?
	  AND status = 'ASSIGNED'
	  AND id != ?
	  AND start_time < ?
	  AND end_time > ?
	LIMIT 1
`

// FindConflict returns the first ASSIGNED assignment for the aide on the date
// whose time range overlaps the given one, excluding excludeID. Returns nil
// when the slot is free.
func (s *SQLite) FindConflict(ctx context.Context, aideID int64, date, start, end string, excludeID int64) (*roster.Assignment, error) {
	a, err := scanAssignment(s.db.QueryRowContext(ctx, conflictQuery, aideID, date, excludeID, end, start))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checking conflict: %w", err)
	}
	return a, nil
}

// ReplaceAssignment atomically unassigns the conflicting assignment and stores
// updated as ASSIGNED in its place. Both rows change or neither does.
func (s *SQLite) ReplaceAssignment(ctx context.Context, conflictingID int64, updated *roster.Assignment) (*roster.Assignment, *roster.Assignment, error) {
	if err := updated.Validate(); err != nil {
		return nil, nil, err
	}
	if updated.AideID == nil {
		return nil, nil, fmt.Errorf("replacement assignment %d has no aide", updated.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	getQuery := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`
	if _, err := scanAssignment(tx.QueryRowContext(ctx, getQuery, conflictingID)); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, roster.ErrAssignmentNotFound
		}
		return nil, nil, fmt.Errorf("querying conflicting assignment: %w", err)
	}

	// The target slot must be free once the conflicting row steps aside.
	other, err := scanAssignment(tx.QueryRowContext(ctx, conflictQuery,
		*updated.AideID, updated.Date, updated.ID, updated.EndTime, updated.StartTime))
	if err != nil && err != sql.ErrNoRows {
		return nil, nil, fmt.Errorf("checking conflict: %w", err)
	}
	if err == nil && other.ID != conflictingID {
		return nil, nil, fmt.Errorf("%w: assignment %d also occupies the slot", roster.ErrScheduleConflict, other.ID)
	}

	unassignQuery := `
		UPDATE assignments
		SET aide_id = NULL, date = NULL, start_time = NULL, end_time = NULL, status = 'UNASSIGNED'
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, unassignQuery, conflictingID); err != nil {
		return nil, nil, fmt.Errorf("unassigning assignment %d: %w", conflictingID, err)
	}

	assignQuery := `
		UPDATE assignments
		SET aide_id = ?, date = ?, start_time = ?, end_time = ?, status = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, assignQuery,
		*updated.AideID,
		updated.Date,
		updated.StartTime,
		updated.EndTime,
		updated.Status,
		updated.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("assigning assignment %d: %w", updated.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil, roster.ErrAssignmentNotFound
	}

	assigned, err := scanAssignment(tx.QueryRowContext(ctx, getQuery, updated.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("reading assigned row: %w", err)
	}
	unassigned, err := scanAssignment(tx.QueryRowContext(ctx, getQuery, conflictingID))
	if err != nil {
		return nil, nil, fmt.Errorf("reading unassigned row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing transaction: %w", err)
	}

	return assigned, unassigned, nil
}

// CreateAide adds a teacher aide and fills in its ID.
func (s *SQLite) CreateAide(ctx context.Context, aide *roster.TeacherAide) error {
	query := `INSERT INTO teacher_aides (name, qualifications, colour_hex) VALUES (?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, aide.Name, nullable(aide.Qualifications), nullable(aide.ColourHex))
	if err != nil {
		return fmt.Errorf("inserting aide: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	aide.ID = id

	return nil
}

// ListAides returns all teacher aides ordered by name.
func (s *SQLite) ListAides(ctx context.Context) ([]*roster.TeacherAide, error) {
	query := `SELECT id, name, qualifications, colour_hex FROM teacher_aides ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying aides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var aides []*roster.TeacherAide
	for rows.Next() {
		var (
			aide           roster.TeacherAide
			qualifications sql.NullString
			colour         sql.NullString
		)
		if err := rows.Scan(&aide.ID, &aide.Name, &qualifications, &colour); err != nil {
			return nil, fmt.Errorf("scanning aide: %w", err)
		}
		aide.Qualifications = qualifications.String
		aide.ColourHex = colour.String
		aides = append(aides, &aide)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating aides: %w", err)
	}

	return aides, nil
}

// CreateAbsence records an aide absence and fills in its ID.
func (s *SQLite) CreateAbsence(ctx context.Context, ab *roster.Absence) error {
	if err := roster.ValidateDate(ab.StartDate); err != nil {
		return fmt.Errorf("absence start date: %w", err)
	}
	if err := roster.ValidateDate(ab.EndDate); err != nil {
		return fmt.Errorf("absence end date: %w", err)
	}
	if ab.EndDate < ab.StartDate {
		return fmt.Errorf("absence ends before it starts")
	}

	query := `INSERT INTO absences (aide_id, start_date, end_date, reason) VALUES (?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, ab.AideID, ab.StartDate, ab.EndDate, nullable(ab.Reason))
	if err != nil {
		return fmt.Errorf("inserting absence: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	ab.ID = id

	return nil
}

// ListAbsences returns all recorded absences.
func (s *SQLite) ListAbsences(ctx context.Context) ([]*roster.Absence, error) {
	query := `SELECT id, aide_id, start_date, end_date, reason FROM absences ORDER BY start_date, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying absences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var absences []*roster.Absence
	for rows.Next() {
		var (
			ab     roster.Absence
			start  sql.NullString
			end    sql.NullString
			reason sql.NullString
		)
		if err := rows.Scan(&ab.ID, &ab.AideID, &start, &end, &reason); err != nil {
			return nil, fmt.Errorf("scanning absence: %w", err)
		}
		if start.Valid && len(start.String) >= 10 {
			ab.StartDate = start.String[:10]
		}
		if end.Valid && len(end.String) >= 10 {
			ab.EndDate = end.String[:10]
		}
		ab.Reason = reason.String
		absences = append(absences, &ab)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating absences: %w", err)
	}

	return absences, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}
