package db

import (
	"database/sql"
	"errors"

	"github.com/hunterjackson/todoer/internal/models"
)

// CreateLabel creates a new label
func (db *DB) CreateLabel(name, color string) (*models.Label, error) {
	var next float64
	if err := db.QueryRow("SELECT COALESCE(MAX(sort_order), 0) + 1 FROM labels").Scan(&next); err != nil {
		return nil, err
	}

	id := db.newID()
	_, err := db.Exec(`
		INSERT INTO labels (id, name, color, sort_order, favorite, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, id, name, color, next, db.now())
	if err != nil {
		return nil, err
	}

	return db.GetLabel(id)
}

// GetLabel retrieves a label by ID
func (db *DB) GetLabel(id string) (*models.Label, error) {
	l := &models.Label{}
	err := db.QueryRow(`
		SELECT id, name, color, sort_order, favorite, created_at
		FROM labels WHERE id = ?
	`, id).Scan(&l.ID, &l.Name, &l.Color, &l.SortOrder, &l.Favorite, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetLabelByName retrieves a label by its name (case-insensitive)
func (db *DB) GetLabelByName(name string) (*models.Label, error) {
	l := &models.Label{}
	err := db.QueryRow(`
		SELECT id, name, color, sort_order, favorite, created_at
		FROM labels WHERE LOWER(name) = LOWER(?)
	`, name).Scan(&l.ID, &l.Name, &l.Color, &l.SortOrder, &l.Favorite, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLabels returns all labels, favorites first
func (db *DB) ListLabels() ([]models.Label, error) {
	rows, err := db.Query(`
		SELECT id, name, color, sort_order, favorite, created_at
		FROM labels ORDER BY favorite DESC, sort_order ASC
	`)
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

// UpdateLabel updates a label
func (db *DB) UpdateLabel(id, name, color string, favorite bool) error {
	_, err := db.Exec(`
		UPDATE labels SET name = ?, color = ?, favorite = ? WHERE id = ?
	`, name, color, favorite, id)
	return err
}

// DeleteLabel deletes a label; its task associations go with it
func (db *DB) DeleteLabel(id string) error {
	_, err := db.Exec("DELETE FROM labels WHERE id = ?", id)
	return err
}

// ListTasksByLabel returns active tasks carrying the given label
func (db *DB) ListTasksByLabel(labelID string) ([]models.Task, error) {
	tasks, err := db.queryTasks(`
		SELECT `+taskColumns+` FROM tasks t
		JOIN task_labels tl ON t.id = tl.task_id
		WHERE tl.label_id = ? AND t.deleted_at IS NULL
		ORDER BY t.sort_order ASC, t.created_at ASC
	`, labelID)
	if err != nil {
		return nil, err
	}
	return db.attachLabels(tasks)
}
