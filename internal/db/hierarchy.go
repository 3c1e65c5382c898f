package db

import "fmt"

// The task forest is a flat parent_id back-reference per row; tree walks load
// an adjacency snapshot and traverse it in memory. Every walk carries a
// visited set so externally corrupted data containing a cycle terminates
// instead of looping, and remains operable (deletable) for recovery.

// parentIndex returns id -> parent id for every task row, deleted included
func (db *DB) parentIndex() (map[string]*string, error) {
	rows, err := db.Query("SELECT id, parent_id FROM tasks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parents := make(map[string]*string)
	for rows.Next() {
		var id string
		var parent *string
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, err
		}
		parents[id] = parent
	}
	return parents, rows.Err()
}

// childIndex inverts a parent index into parent id -> child ids
func childIndex(parents map[string]*string) map[string][]string {
	children := make(map[string][]string)
	for id, parent := range parents {
		if parent != nil {
			children[*parent] = append(children[*parent], id)
		}
	}
	return children
}

// descendants collects every transitive descendant of root, in breadth-first
// order, root excluded
func descendants(children map[string][]string, root string) []string {
	visited := map[string]bool{root: true}
	var out []string

	queue := append([]string(nil), children[root]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, id)
		queue = append(queue, children[id]...)
	}
	return out
}

// checkReparent rejects parent assignments that would break the forest: a
// task cannot be its own parent, and cannot move under one of its own
// descendants. The ancestor walk starts at the proposed parent and follows
// parent links upward.
func (db *DB) checkReparent(taskID, newParentID string) error {
	if newParentID == taskID {
		return fmt.Errorf("%w: %s", ErrSelfParent, taskID)
	}

	parents, err := db.parentIndex()
	if err != nil {
		return err
	}

	visited := make(map[string]bool)
	for cur := &newParentID; cur != nil; cur = parents[*cur] {
		if visited[*cur] {
			break
		}
		visited[*cur] = true
		if *cur == taskID {
			return fmt.Errorf("%w: %s is an ancestor of %s", ErrCyclicParent, taskID, newParentID)
		}
	}
	return nil
}
