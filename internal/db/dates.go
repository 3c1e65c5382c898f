package db

import (
	"time"

	"github.com/hunterjackson/todoer/internal/models"
)

// Date-window queries. Today and overdue expand their base set to every
// descendant of a matching task, at any depth, regardless of the descendant's
// own due date. Upcoming does not expand; the two behaviors are intentionally
// different and the Today view relies on it.

// TodayTasks returns incomplete tasks whose due date falls on or before the
// current calendar day (the Today view unions overdue and today), plus all
// their descendants
func (db *DB) TodayTasks() ([]models.Task, error) {
	endOfToday := startOfDay(db.now()).Add(24 * time.Hour)
	return db.dueWindowWithDescendants(func(t *models.Task) bool {
		return !t.Completed && t.DueDate != nil && t.DueDate.Before(endOfToday)
	})
}

// OverdueTasks returns incomplete tasks due strictly before the start of the
// current calendar day, plus all their descendants
func (db *DB) OverdueTasks() ([]models.Task, error) {
	today := startOfDay(db.now())
	return db.dueWindowWithDescendants(func(t *models.Task) bool {
		return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
	})
}

// UpcomingTasks returns incomplete tasks due within [now, now+days*24h).
// Unlike the today and overdue windows, the result is not expanded to
// descendants.
func (db *DB) UpcomingTasks(days int) ([]models.Task, error) {
	now := db.now()
	end := now.Add(time.Duration(days) * 24 * time.Hour)

	tasks, err := db.activeTasks()
	if err != nil {
		return nil, err
	}

	var out []models.Task
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if !t.DueDate.Before(now) && t.DueDate.Before(end) {
			out = append(out, t)
		}
	}
	return db.attachLabels(out)
}

// dueWindowWithDescendants filters active tasks by match, then pulls in every
// transitive descendant of a matching task. The walk is over the active
// snapshot with a visited set, so corrupted cyclic data cannot hang it.
func (db *DB) dueWindowWithDescendants(match func(*models.Task) bool) ([]models.Task, error) {
	tasks, err := db.activeTasks()
	if err != nil {
		return nil, err
	}

	children := make(map[string][]string)
	for _, t := range tasks {
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t.ID)
		}
	}

	included := make(map[string]bool)
	for i := range tasks {
		if !match(&tasks[i]) {
			continue
		}
		included[tasks[i].ID] = true
		for _, id := range descendants(children, tasks[i].ID) {
			included[id] = true
		}
	}

	var out []models.Task
	for _, t := range tasks {
		if included[t.ID] {
			out = append(out, t)
		}
	}
	return db.attachLabels(out)
}

// activeTasks loads every non-deleted task ordered by sort order
func (db *DB) activeTasks() ([]models.Task, error) {
	return db.queryTasks(`
		SELECT ` + taskColumns + ` FROM tasks
		WHERE deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC
	`)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
