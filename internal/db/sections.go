package db

import (
	"github.com/hunterjackson/todoer/internal/models"
)

// CreateSection creates a new section inside a project
func (db *DB) CreateSection(projectID, name string) (*models.Section, error) {
	if err := db.checkProject(projectID); err != nil {
		return nil, err
	}

	var next float64
	if err := db.QueryRow(`
		SELECT COALESCE(MAX(sort_order), 0) + 1 FROM sections WHERE project_id = ?
	`, projectID).Scan(&next); err != nil {
		return nil, err
	}

	id := db.newID()
	now := db.now()
	_, err := db.Exec(`
		INSERT INTO sections (id, project_id, name, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, projectID, name, next, now, now)
	if err != nil {
		return nil, err
	}

	return db.GetSection(id)
}

// GetSection retrieves a section by ID
func (db *DB) GetSection(id string) (*models.Section, error) {
	s := &models.Section{}
	err := db.QueryRow(`
		SELECT id, project_id, name, sort_order, created_at, updated_at
		FROM sections WHERE id = ?
	`, id).Scan(&s.ID, &s.ProjectID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSections returns all sections of a project in sort order
func (db *DB) ListSections(projectID string) ([]models.Section, error) {
	rows, err := db.Query(`
		SELECT id, project_id, name, sort_order, created_at, updated_at
		FROM sections
		WHERE project_id = ?
		ORDER BY sort_order ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// UpdateSection renames a section
func (db *DB) UpdateSection(id, name string) error {
	_, err := db.Exec(`
		UPDATE sections SET name = ?, updated_at = ? WHERE id = ?
	`, name, db.now(), id)
	return err
}

// DeleteSection deletes a section; tasks in it keep their project and lose
// the section reference
func (db *DB) DeleteSection(id string) error {
	_, err := db.Exec("DELETE FROM sections WHERE id = ?", id)
	return err
}
