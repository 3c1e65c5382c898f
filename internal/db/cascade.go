package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DeleteTask soft-deletes a task and every transitive descendant. The
// affected set is computed first with a visited-set walk, then written inside
// one transaction, so a crash cannot leave a half-marked subtree. Returns
// false if the task does not exist or is already deleted.
func (db *DB) DeleteTask(id string) (bool, error) {
	var one int
	err := db.QueryRow("SELECT 1 FROM tasks WHERE id = ? AND deleted_at IS NULL", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	parents, err := db.parentIndex()
	if err != nil {
		return false, err
	}
	affected := append([]string{id}, descendants(childIndex(parents), id)...)

	// One shared timestamp marks the whole cascade; restore keys on it.
	stamp := db.now()

	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, taskID := range affected {
		if _, err := tx.Exec(`
			UPDATE tasks SET deleted_at = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL
		`, stamp, stamp, taskID); err != nil {
			return false, fmt.Errorf("delete task %s: %w", taskID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	db.log.Debug("cascade delete", "task", id, "affected", len(affected))
	return true, nil
}

// RestoreTask un-deletes a task and the descendants that were deleted in the
// same cascade, identified by a deleted_at equal to the root's. Descendants
// deleted earlier in a separate cascade keep their own stamp and stay
// deleted. Returns false if the task does not exist or is not deleted.
func (db *DB) RestoreTask(id string) (bool, error) {
	var stamp sql.NullTime
	err := db.QueryRow("SELECT deleted_at FROM tasks WHERE id = ?", id).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !stamp.Valid {
		return false, nil
	}

	parents, err := db.parentIndex()
	if err != nil {
		return false, err
	}
	subtree := append([]string{id}, descendants(childIndex(parents), id)...)

	// Keep only rows stamped by the same cascade. The comparison happens in
	// Go because the driver's stored text form is not canonical across
	// offsets.
	stamps, err := db.deletionStamps()
	if err != nil {
		return false, err
	}
	var affected []string
	for _, taskID := range subtree {
		if at, ok := stamps[taskID]; ok && at.Equal(stamp.Time) {
			affected = append(affected, taskID)
		}
	}

	now := db.now()

	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, taskID := range affected {
		if _, err := tx.Exec(`
			UPDATE tasks SET deleted_at = NULL, updated_at = ?
			WHERE id = ?
		`, now, taskID); err != nil {
			return false, fmt.Errorf("restore task %s: %w", taskID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	db.log.Debug("cascade restore", "task", id, "affected", len(affected))
	return true, nil
}

// deletionStamps returns deleted_at per soft-deleted task id
func (db *DB) deletionStamps() (map[string]time.Time, error) {
	rows, err := db.Query("SELECT id, deleted_at FROM tasks WHERE deleted_at IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stamps := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		stamps[id] = at
	}
	return stamps, rows.Err()
}
