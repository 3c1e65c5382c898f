package db

import "errors"

// Validation errors raised before any write. A rejected mutation leaves no
// partial state.
var (
	ErrEmptyContent           = errors.New("task content is empty")
	ErrProjectNotFound        = errors.New("project not found")
	ErrSectionNotFound        = errors.New("section not found")
	ErrSectionProjectMismatch = errors.New("section belongs to a different project")
	ErrParentTaskNotFound     = errors.New("parent task not found")
	ErrLabelNotFound          = errors.New("label not found")
)

// Hierarchy errors raised when a reparent would break the task forest.
var (
	ErrSelfParent   = errors.New("task cannot be its own parent")
	ErrCyclicParent = errors.New("task cannot be parented under its own descendant")
)
