package roster

import "context"

// Repository defines the storage interface backing the assignment service.
type Repository interface {
	// CreateAssignment adds a new assignment and fills in its ID.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID.
	// Returns ErrAssignmentNotFound if no such record exists.
	GetAssignment(ctx context.Context, id int64) (*Assignment, error)

	// UpdateAssignment replaces an assignment's mutable fields.
	// Returns the stored record, or ErrAssignmentNotFound.
	UpdateAssignment(ctx context.Context, a *Assignment) (*Assignment, error)

	// ListAssignments returns assignments whose date falls in [start, end],
	// plus all unassigned records. Empty bounds mean no range filter.
	ListAssignments(ctx context.Context, start, end string) ([]*Assignment, error)

	// FindConflict returns the first ASSIGNED assignment for the aide on the
	// date whose [start, end) range overlaps the given one, excluding
	// excludeID. Returns nil when the slot is free.
	FindConflict(ctx context.Context, aideID int64, date, start, end string, excludeID int64) (*Assignment, error)

	// ReplaceAssignment atomically unassigns the conflicting assignment and
	// stores updated as ASSIGNED in its place. Both records change or neither
	// does. Returns the stored (assigned, unassigned) pair.
	ReplaceAssignment(ctx context.Context, conflictingID int64, updated *Assignment) (*Assignment, *Assignment, error)

	// CreateAide adds a teacher aide and fills in its ID.
	CreateAide(ctx context.Context, aide *TeacherAide) error

	// ListAides returns all teacher aides ordered by name.
	ListAides(ctx context.Context) ([]*TeacherAide, error)

	// CreateAbsence records an aide absence and fills in its ID.
	CreateAbsence(ctx context.Context, ab *Absence) error

	// ListAbsences returns all recorded absences.
	ListAbsences(ctx context.Context) ([]*Absence, error)

	// Close releases any resources held by the repository.
	Close() error
}
