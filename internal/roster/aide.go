package roster

// TeacherAide is a staff member who can be assigned tasks. The scheduling
// engine reads aide records but never mutates them.
type TeacherAide struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Qualifications string `json:"qualifications,omitempty"`
	ColourHex      string `json:"colour_hex,omitempty"`
}

// Absence marks an aide as away for an inclusive date range.
//
// Absences are advisory: they colour the grid but are not consulted by
// conflict detection.
type Absence struct {
	ID        int64  `json:"id"`
	AideID    int64  `json:"aide_id"`
	StartDate string `json:"start_date"` // "YYYY-MM-DD"
	EndDate   string `json:"end_date"`   // "YYYY-MM-DD"
	Reason    string `json:"reason,omitempty"`
}

// Covers returns true if the absence spans the given "YYYY-MM-DD" date.
func (a *Absence) Covers(date string) bool {
	return a.StartDate <= date && date <= a.EndDate
}

// Task is the template an assignment is created from. Owned by task
// management; read-only to the engine.
type Task struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	StartTime      string `json:"start_time,omitempty"` // fixed schedule, empty for flexible tasks
	EndTime        string `json:"end_time,omitempty"`
	IsFlexible     bool   `json:"is_flexible"`
	RecurrenceRule string `json:"recurrence_rule,omitempty"`
}
