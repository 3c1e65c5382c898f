package models

import "time"

// InboxProjectID is the reserved project every task without an explicit
// project lands in. The row is seeded by the schema and cannot be deleted.
const InboxProjectID = "inbox"

// Task priorities, 1 is the most urgent and 4 is the default.
const (
	PriorityHighest = 1
	PriorityHigh    = 2
	PriorityMedium  = 3
	PriorityDefault = 4
)

// Project groups tasks
type Project struct {
	ID        string
	Name      string
	Color     string
	SortOrder float64
	Favorite  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section is a named slice of a project; tasks may optionally belong to one
type Section struct {
	ID        string
	ProjectID string
	Name      string
	SortOrder float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label is a tag that can be attached to any number of tasks
type Label struct {
	ID        string
	Name      string
	Color     string
	SortOrder float64
	Favorite  bool
	CreatedAt time.Time
}

// Task is the central entity. Tasks form a forest linked by ParentID; siblings
// (same parent within the same project) are ordered by ascending SortOrder.
// A non-nil DeletedAt hides the task from every read until it is restored.
type Task struct {
	ID             string
	Content        string
	Description    string
	ProjectID      string
	SectionID      *string
	ParentID       *string
	DueDate        *time.Time
	Deadline       *time.Time
	Duration       *int // minutes
	RecurrenceRule string
	Priority       int
	Completed      bool
	CompletedAt    *time.Time
	SortOrder      float64
	DelegatedTo    *string
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Labels         []Label // populated when loading tasks
}
