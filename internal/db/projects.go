package db

import (
	"errors"
	"fmt"

	"github.com/hunterjackson/todoer/internal/models"
)

// CreateProject creates a new project, appended after the current last one
func (db *DB) CreateProject(name, color string) (*models.Project, error) {
	var next float64
	if err := db.QueryRow("SELECT COALESCE(MAX(sort_order), 0) + 1 FROM projects").Scan(&next); err != nil {
		return nil, err
	}

	id := db.newID()
	now := db.now()
	_, err := db.Exec(`
		INSERT INTO projects (id, name, color, sort_order, favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, id, name, color, next, now, now)
	if err != nil {
		return nil, err
	}

	return db.GetProject(id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(id string) (*models.Project, error) {
	p := &models.Project{}
	err := db.QueryRow(`
		SELECT id, name, color, sort_order, favorite, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Color, &p.SortOrder, &p.Favorite, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns all projects, favorites first
func (db *DB) ListProjects() ([]models.Project, error) {
	rows, err := db.Query(`
		SELECT id, name, color, sort_order, favorite, created_at, updated_at
		FROM projects ORDER BY favorite DESC, sort_order ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.SortOrder, &p.Favorite, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject updates a project's name, color and favorite flag
func (db *DB) UpdateProject(id, name, color string, favorite bool) error {
	if err := db.checkProject(id); err != nil {
		return err
	}
	_, err := db.Exec(`
		UPDATE projects SET name = ?, color = ?, favorite = ?, updated_at = ?
		WHERE id = ?
	`, name, color, favorite, db.now(), id)
	return err
}

// DeleteProject removes a project; its tasks move to the inbox first. The
// inbox itself cannot be deleted.
func (db *DB) DeleteProject(id string) error {
	if id == models.InboxProjectID {
		return fmt.Errorf("the inbox project cannot be deleted")
	}
	if err := db.checkProject(id); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE tasks SET project_id = ?, section_id = NULL, updated_at = ?
		WHERE project_id = ?
	`, models.InboxProjectID, db.now(), id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM projects WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ProjectExists reports whether a project with the given id exists
func (db *DB) ProjectExists(id string) (bool, error) {
	err := db.checkProject(id)
	if errors.Is(err, ErrProjectNotFound) {
		return false, nil
	}
	return err == nil, err
}
