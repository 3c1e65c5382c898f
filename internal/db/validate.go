package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// Referential-integrity checks. Every check runs before the write it guards,
// so a failed mutation leaves storage untouched.

func (db *DB) checkProject(id string) error {
	var one int
	err := db.QueryRow("SELECT 1 FROM projects WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return err
}

// checkSection confirms the section exists and belongs to the given project
func (db *DB) checkSection(sectionID, projectID string) error {
	var owner string
	err := db.QueryRow("SELECT project_id FROM sections WHERE id = ?", sectionID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	if err != nil {
		return err
	}
	if owner != projectID {
		return fmt.Errorf("%w: section %s belongs to %s", ErrSectionProjectMismatch, sectionID, owner)
	}
	return nil
}

// checkParent confirms the parent task exists and is not soft-deleted
func (db *DB) checkParent(id string) error {
	var one int
	err := db.QueryRow("SELECT 1 FROM tasks WHERE id = ? AND deleted_at IS NULL", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrParentTaskNotFound, id)
	}
	return err
}

func (db *DB) checkLabels(ids []string) error {
	for _, id := range ids {
		var one int
		err := db.QueryRow("SELECT 1 FROM labels WHERE id = ?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrLabelNotFound, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
