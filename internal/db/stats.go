package db

import "time"

// Stats summarizes completion activity for the karma display
type Stats struct {
	CompletedToday int
	CompletedTotal int
	Streak         int // consecutive days, ending today or yesterday, with at least one completion
}

// Stats computes completion counts and the current daily streak from the
// completed_at stamps of active tasks
func (db *DB) Stats() (*Stats, error) {
	rows, err := db.Query(`
		SELECT completed_at FROM tasks
		WHERE deleted_at IS NULL AND completed = 1 AND completed_at IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make(map[time.Time]bool)
	s := &Stats{}
	today := startOfDay(db.now())

	for rows.Next() {
		var completedAt time.Time
		if err := rows.Scan(&completedAt); err != nil {
			return nil, err
		}
		s.CompletedTotal++
		day := startOfDay(completedAt.In(today.Location()))
		days[day] = true
		if day.Equal(today) {
			s.CompletedToday++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A streak survives until a full day passes with no completion, so it
	// may start counting from yesterday.
	day := today
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}
	for days[day] {
		s.Streak++
		day = day.AddDate(0, 0, -1)
	}

	return s, nil
}
