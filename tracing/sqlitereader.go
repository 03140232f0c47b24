package tracing

import (
	"database/sql"
	"fmt"

	"github.com/sarchlab/slotlink/sim/timing"
)

// TaskQuery selects tasks from a trace. Empty fields match everything.
type TaskQuery struct {
	ID       string
	ParentID string
	Kind     string
	Where    string
}

// SQLiteTraceReader is a reader that reads trace data from a SQLite database.
type SQLiteTraceReader struct {
	*sql.DB

	filename string
}

// NewSQLiteTraceReader creates a new SQLiteTraceReader.
func NewSQLiteTraceReader(filename string) *SQLiteTraceReader {
	return &SQLiteTraceReader{filename: filename}
}

// Init establishes a connection to the database.
func (r *SQLiteTraceReader) Init() error {
	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		return fmt.Errorf("tracing: open %s: %w", r.filename, err)
	}

	r.DB = db

	return nil
}

// CountTasks returns the number of tasks of a kind, grouped by outcome.
func (r *SQLiteTraceReader) CountTasks(kind string) (map[string]int, error) {
	rows, err := r.Query(
		`SELECT outcome, COUNT(*) FROM trace WHERE kind = ? GROUP BY outcome`,
		kind)
	if err != nil {
		return nil, fmt.Errorf("tracing: count %s: %w", kind, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)

		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("tracing: count %s: %w", kind, err)
		}

		counts[outcome] = n
	}

	return counts, rows.Err()
}

// ListTasks returns the tasks matching the query, oldest first.
func (r *SQLiteTraceReader) ListTasks(query TaskQuery) ([]Task, error) {
	sqlStr := `
		SELECT task_id, parent_id, kind, what, location,
			start_time, end_time, outcome
		FROM trace
		WHERE (? = '' OR task_id = ?)
			AND (? = '' OR parent_id = ?)
			AND (? = '' OR kind = ?)
			AND (? = '' OR location = ?)
		ORDER BY start_time, end_time`

	rows, err := r.Query(sqlStr,
		query.ID, query.ID,
		query.ParentID, query.ParentID,
		query.Kind, query.Kind,
		query.Where, query.Where,
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var (
			t          Task
			start, end int64
		)

		err := rows.Scan(&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Where,
			&start, &end, &t.Outcome)
		if err != nil {
			return nil, fmt.Errorf("tracing: list tasks: %w", err)
		}

		t.StartTime = timing.VTime(start)
		t.EndTime = timing.VTime(end)
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// ListSteps returns the milestones of a task.
func (r *SQLiteTraceReader) ListSteps(taskID string) ([]TaskStep, error) {
	rows, err := r.Query(
		`SELECT time, what FROM step WHERE task_id = ? ORDER BY time`, taskID)
	if err != nil {
		return nil, fmt.Errorf("tracing: list steps: %w", err)
	}
	defer rows.Close()

	var steps []TaskStep
	for rows.Next() {
		var (
			at   int64
			step TaskStep
		)

		if err := rows.Scan(&at, &step.What); err != nil {
			return nil, fmt.Errorf("tracing: list steps: %w", err)
		}

		step.Time = timing.VTime(at)
		steps = append(steps, step)
	}

	return steps, rows.Err()
}
