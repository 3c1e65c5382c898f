package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hunterjackson/todoer/internal/models"
)

const taskColumns = `id, content, description, project_id, section_id, parent_id,
	due_date, deadline, duration, recurrence_rule, priority, completed,
	completed_at, sort_order, delegated_to, deleted_at, created_at, updated_at`

// TaskInput carries the fields accepted when creating a task. ProjectID
// defaults to the inbox; sort order is assigned by the repository.
type TaskInput struct {
	Content        string
	Description    string
	ProjectID      string
	SectionID      *string
	ParentID       *string
	DueDate        *time.Time
	Deadline       *time.Time
	Duration       *int
	RecurrenceRule string
	Priority       int
	DelegatedTo    *string
	LabelIDs       []string
}

// TaskPatch carries a partial update. Nil fields are left untouched; for
// nullable fields a pointer to the zero value ("" or the zero time) clears
// the stored value.
type TaskPatch struct {
	Content        *string
	Description    *string
	ProjectID      *string
	SectionID      *string
	ParentID       *string
	DueDate        *time.Time
	Deadline       *time.Time
	Duration       *int
	RecurrenceRule *string
	Priority       *int
	DelegatedTo    *string
	LabelIDs       *[]string
}

// TaskFilter narrows ListTasks. RootOnly selects tasks with no parent and
// wins over ParentID.
type TaskFilter struct {
	ProjectID *string
	Completed *bool
	ParentID  *string
	RootOnly  bool
}

// CreateTask validates every reference, assigns id, timestamps and a sort
// order after the current last sibling, and persists the task with its label
// associations
func (db *DB) CreateTask(in TaskInput) (*models.Task, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	projectID := in.ProjectID
	if projectID == "" {
		projectID = models.InboxProjectID
	}
	if err := db.checkProject(projectID); err != nil {
		return nil, err
	}
	if in.SectionID != nil {
		if err := db.checkSection(*in.SectionID, projectID); err != nil {
			return nil, err
		}
	}
	if in.ParentID != nil {
		if err := db.checkParent(*in.ParentID); err != nil {
			return nil, err
		}
	}
	if err := db.checkLabels(in.LabelIDs); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority < models.PriorityHighest || priority > models.PriorityDefault {
		priority = models.PriorityDefault
	}

	sortOrder, err := db.nextSortOrder(projectID, in.ParentID)
	if err != nil {
		return nil, err
	}

	id := db.newID()
	now := db.now()

	_, err = db.Exec(`
		INSERT INTO tasks (id, content, description, project_id, section_id, parent_id,
			due_date, deadline, duration, recurrence_rule, priority, completed,
			completed_at, sort_order, delegated_to, deleted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?, NULL, ?, ?)
	`, id, content, in.Description, projectID, in.SectionID, in.ParentID,
		in.DueDate, in.Deadline, in.Duration, in.RecurrenceRule, priority,
		sortOrder, in.DelegatedTo, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	if len(in.LabelIDs) > 0 {
		if err := db.setTaskLabels(id, in.LabelIDs); err != nil {
			return nil, err
		}
	}

	return db.GetTask(id)
}

// nextSortOrder appends after the current maximum among siblings
func (db *DB) nextSortOrder(projectID string, parentID *string) (float64, error) {
	query := `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM tasks
		WHERE project_id = ? AND deleted_at IS NULL AND `
	args := []interface{}{projectID}
	if parentID == nil {
		query += "parent_id IS NULL"
	} else {
		query += "parent_id = ?"
		args = append(args, *parentID)
	}

	var next float64
	err := db.QueryRow(query, args...).Scan(&next)
	return next, err
}

// GetTask retrieves a task with its labels, or nil if it is absent or
// soft-deleted
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted_at IS NULL`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	labels, err := db.taskLabels(t.ID)
	if err != nil {
		return nil, err
	}
	t.Labels = labels
	return t, nil
}

// ListTasks returns active tasks matching the filter, ordered by sort order
func (db *DB) ListTasks(f TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL`
	var args []interface{}

	if f.ProjectID != nil {
		query += " AND project_id = ?"
		args = append(args, *f.ProjectID)
	}
	if f.Completed != nil {
		query += " AND completed = ?"
		args = append(args, *f.Completed)
	}
	if f.RootOnly {
		query += " AND parent_id IS NULL"
	} else if f.ParentID != nil {
		query += " AND parent_id = ?"
		args = append(args, *f.ParentID)
	}

	query += " ORDER BY sort_order ASC, created_at ASC"

	tasks, err := db.queryTasks(query, args...)
	if err != nil {
		return nil, err
	}
	return db.attachLabels(tasks)
}

// UpdateTask applies a partial update, revalidating every changed reference.
// Returns nil if the task does not exist.
func (db *DB) UpdateTask(id string, p TaskPatch) (*models.Task, error) {
	cur, err := db.GetTask(id)
	if err != nil || cur == nil {
		return nil, err
	}

	if p.Content != nil {
		content := strings.TrimSpace(*p.Content)
		if content == "" {
			return nil, ErrEmptyContent
		}
		cur.Content = content
	}
	if p.Description != nil {
		cur.Description = *p.Description
	}

	if p.ProjectID != nil {
		projectID := *p.ProjectID
		if projectID == "" {
			projectID = models.InboxProjectID
		}
		if err := db.checkProject(projectID); err != nil {
			return nil, err
		}
		cur.ProjectID = projectID
	}

	if p.SectionID != nil {
		if *p.SectionID == "" {
			cur.SectionID = nil
		} else {
			sid := *p.SectionID
			cur.SectionID = &sid
		}
	}
	// The section must belong to the task's project even when only one of
	// the two changed.
	if cur.SectionID != nil && (p.SectionID != nil || p.ProjectID != nil) {
		if err := db.checkSection(*cur.SectionID, cur.ProjectID); err != nil {
			return nil, err
		}
	}

	if p.ParentID != nil {
		if *p.ParentID == "" {
			cur.ParentID = nil
		} else {
			pid := *p.ParentID
			if err := db.checkParent(pid); err != nil {
				return nil, err
			}
			if err := db.checkReparent(id, pid); err != nil {
				return nil, err
			}
			cur.ParentID = &pid
		}
	}

	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			cur.DueDate = nil
		} else {
			due := *p.DueDate
			cur.DueDate = &due
		}
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			cur.Deadline = nil
		} else {
			deadline := *p.Deadline
			cur.Deadline = &deadline
		}
	}
	if p.Duration != nil {
		if *p.Duration <= 0 {
			cur.Duration = nil
		} else {
			d := *p.Duration
			cur.Duration = &d
		}
	}
	if p.RecurrenceRule != nil {
		cur.RecurrenceRule = *p.RecurrenceRule
	}
	if p.Priority != nil && *p.Priority >= models.PriorityHighest && *p.Priority <= models.PriorityDefault {
		cur.Priority = *p.Priority
	}
	if p.DelegatedTo != nil {
		if *p.DelegatedTo == "" {
			cur.DelegatedTo = nil
		} else {
			who := *p.DelegatedTo
			cur.DelegatedTo = &who
		}
	}

	if p.LabelIDs != nil {
		if err := db.checkLabels(*p.LabelIDs); err != nil {
			return nil, err
		}
	}

	cur.UpdatedAt = db.now()

	_, err = db.Exec(`
		UPDATE tasks SET content = ?, description = ?, project_id = ?, section_id = ?,
			parent_id = ?, due_date = ?, deadline = ?, duration = ?, recurrence_rule = ?,
			priority = ?, delegated_to = ?, updated_at = ?
		WHERE id = ?
	`, cur.Content, cur.Description, cur.ProjectID, cur.SectionID, cur.ParentID,
		cur.DueDate, cur.Deadline, cur.Duration, cur.RecurrenceRule,
		cur.Priority, cur.DelegatedTo, cur.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if p.LabelIDs != nil {
		if err := db.setTaskLabels(id, *p.LabelIDs); err != nil {
			return nil, err
		}
	}

	return db.GetTask(id)
}

// CompleteTask marks the task completed and stamps completed_at. Returns nil
// if the task is absent.
func (db *DB) CompleteTask(id string) (*models.Task, error) {
	return db.setCompleted(id, true)
}

// UncompleteTask clears the completed flag and completed_at
func (db *DB) UncompleteTask(id string) (*models.Task, error) {
	return db.setCompleted(id, false)
}

func (db *DB) setCompleted(id string, done bool) (*models.Task, error) {
	cur, err := db.GetTask(id)
	if err != nil || cur == nil {
		return nil, err
	}

	now := db.now()
	var completedAt *time.Time
	if done {
		completedAt = &now
	}

	_, err = db.Exec(`
		UPDATE tasks SET completed = ?, completed_at = ?, updated_at = ? WHERE id = ?
	`, done, completedAt, now, id)
	if err != nil {
		return nil, err
	}
	return db.GetTask(id)
}

// ReorderTask moves a task to a caller-computed sort order, optionally under
// a new parent. Pass nil to keep the current parent, or a pointer to the
// empty string to move the task to the root level. Siblings are never
// renumbered; the caller picks a midpoint or end-of-list value.
func (db *DB) ReorderTask(id string, sortOrder float64, newParentID *string) (*models.Task, error) {
	cur, err := db.GetTask(id)
	if err != nil || cur == nil {
		return nil, err
	}

	parent := cur.ParentID
	if newParentID != nil {
		if *newParentID == "" {
			parent = nil
		} else {
			pid := *newParentID
			if err := db.checkParent(pid); err != nil {
				return nil, err
			}
			if err := db.checkReparent(id, pid); err != nil {
				return nil, err
			}
			parent = &pid
		}
	}

	_, err = db.Exec(`
		UPDATE tasks SET sort_order = ?, parent_id = ?, updated_at = ? WHERE id = ?
	`, sortOrder, parent, db.now(), id)
	if err != nil {
		return nil, err
	}
	return db.GetTask(id)
}

// SearchTasks matches the query as a case-insensitive substring of content
// or description, excluding deleted tasks
func (db *DB) SearchTasks(query string) ([]models.Task, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	tasks, err := db.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE deleted_at IS NULL
		  AND (LOWER(content) LIKE ? OR LOWER(description) LIKE ?)
		ORDER BY sort_order ASC, created_at ASC
	`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	return db.attachLabels(tasks)
}

// ListDelegatedUsers returns the distinct delegated_to values across active
// tasks
func (db *DB) ListDelegatedUsers() ([]string, error) {
	rows, err := db.Query(`
		SELECT DISTINCT delegated_to FROM tasks
		WHERE deleted_at IS NULL AND delegated_to IS NOT NULL
		ORDER BY delegated_to
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// setTaskLabels replaces the label set for a task
func (db *DB) setTaskLabels(taskID string, labelIDs []string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", taskID); err != nil {
		return err
	}
	for _, labelID := range labelIDs {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO task_labels (task_id, label_id) VALUES (?, ?)
		`, taskID, labelID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// taskLabels returns all labels attached to a task
func (db *DB) taskLabels(taskID string) ([]models.Label, error) {
	rows, err := db.Query(`
		SELECT l.id, l.name, l.color, l.sort_order, l.favorite, l.created_at
		FROM labels l
		JOIN task_labels tl ON l.id = tl.label_id
		WHERE tl.task_id = ?
		ORDER BY l.name
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []models.Label
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Color, &l.SortOrder, &l.Favorite, &l.CreatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (db *DB) attachLabels(tasks []models.Task) ([]models.Task, error) {
	for i := range tasks {
		labels, err := db.taskLabels(tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Labels = labels
	}
	return tasks, nil
}

func (db *DB) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		sectionID, parentID, delegatedTo sql.NullString
		dueDate, deadline, completedAt   sql.NullTime
		deletedAt                        sql.NullTime
		duration                         sql.NullInt64
	)

	err := row.Scan(&t.ID, &t.Content, &t.Description, &t.ProjectID, &sectionID,
		&parentID, &dueDate, &deadline, &duration, &t.RecurrenceRule,
		&t.Priority, &t.Completed, &completedAt, &t.SortOrder, &delegatedTo,
		&deletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if sectionID.Valid {
		t.SectionID = &sectionID.String
	}
	if parentID.Valid {
		t.ParentID = &parentID.String
	}
	if delegatedTo.Valid {
		t.DelegatedTo = &delegatedTo.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if deadline.Valid {
		t.Deadline = &deadline.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	if duration.Valid {
		d := int(duration.Int64)
		t.Duration = &d
	}
	return t, nil
}
