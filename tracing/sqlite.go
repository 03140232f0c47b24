package tracing

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/slotlink/sim/timing"
)

// SQLiteTracer is a tracer that stores finished tasks in a SQLite database.
// Tasks are written in batches; whatever is buffered is written when the
// process exits through atexit.
type SQLiteTracer struct {
	*sql.DB

	timeTeller    timing.TimeTeller
	path          string
	batchSize     int
	statement     *sql.Stmt
	stepStatement *sql.Stmt

	lock     sync.Mutex
	inflight map[string]Task
	buffer   []Task
	written  int
}

// NewSQLiteTracer creates a tracer that writes to path. An empty path picks
// a unique file name in the working directory.
func NewSQLiteTracer(path string, timeTeller timing.TimeTeller) *SQLiteTracer {
	t := &SQLiteTracer{
		timeTeller: timeTeller,
		path:       path,
		batchSize:  10000,
		inflight:   make(map[string]Task),
	}

	atexit.Register(func() {
		if err := t.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing trace %s: %v\n", t.path, err)
		}
	})

	return t
}

// Path returns the database file.
func (t *SQLiteTracer) Path() string {
	return t.path
}

// Init creates the database. It refuses to overwrite an existing file.
func (t *SQLiteTracer) Init() error {
	if t.path == "" {
		t.path = "slotlink_trace_" + xid.New().String() + ".sqlite3"
	}

	if _, err := os.Stat(t.path); err == nil {
		return fmt.Errorf("tracing: file %s already exists", t.path)
	}

	db, err := sql.Open("sqlite3", t.path)
	if err != nil {
		return fmt.Errorf("tracing: open %s: %w", t.path, err)
	}

	t.DB = db

	if err := t.createTables(); err != nil {
		return err
	}

	return t.prepareStatements()
}

// StartTask marks the start of a task.
func (t *SQLiteTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	task.StartTime = t.timeTeller.Now()
	t.inflight[task.ID] = task
}

// StepTask records a milestone of a started task.
func (t *SQLiteTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	original.Steps = append(original.Steps, TaskStep{
		Time: t.timeTeller.Now(),
		What: task.What,
	})
	t.inflight[task.ID] = original
}

// EndTask marks the end of a task and queues it for writing.
func (t *SQLiteTracer) EndTask(task Task) {
	t.lock.Lock()

	original, ok := t.inflight[task.ID]
	if !ok {
		t.lock.Unlock()
		return
	}

	delete(t.inflight, task.ID)
	original.EndTime = t.timeTeller.Now()
	original.Outcome = task.Outcome
	t.buffer = append(t.buffer, original)
	full := len(t.buffer) >= t.batchSize
	t.lock.Unlock()

	if full {
		if err := t.Flush(); err != nil {
			panic(err)
		}
	}
}

// Flush writes all the buffered tasks to the database.
func (t *SQLiteTracer) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.buffer) == 0 || t.DB == nil {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return fmt.Errorf("tracing: begin: %w", err)
	}

	for _, task := range t.buffer {
		if err := t.insert(tx, task); err != nil {
			return errors.Join(err, tx.Rollback())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tracing: commit: %w", err)
	}

	t.written += len(t.buffer)
	t.buffer = nil

	return nil
}

// Written returns the number of tasks stored so far.
func (t *SQLiteTracer) Written() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.written
}

// Close flushes and closes the database.
func (t *SQLiteTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}

	if t.DB == nil {
		return nil
	}

	return t.DB.Close()
}

func (t *SQLiteTracer) insert(tx *sql.Tx, task Task) error {
	_, err := tx.Stmt(t.statement).Exec(
		task.ID,
		task.ParentID,
		task.Kind,
		task.What,
		task.Where,
		int64(task.StartTime),
		int64(task.EndTime),
		task.Outcome,
	)
	if err != nil {
		return fmt.Errorf("tracing: insert task %s: %w", task.ID, err)
	}

	for _, step := range task.Steps {
		_, err := tx.Stmt(t.stepStatement).Exec(
			task.ID, int64(step.Time), step.What)
		if err != nil {
			return fmt.Errorf("tracing: insert step of %s: %w", task.ID, err)
		}
	}

	return nil
}

func (t *SQLiteTracer) createTables() error {
	for _, stmt := range []string{
		`create table trace
		(
			task_id    varchar(200) not null,
			parent_id  varchar(200) default '',
			kind       varchar(100) not null,
			what       varchar(100) default '',
			location   varchar(100) default '',
			start_time integer      not null,
			end_time   integer      default 0,
			outcome    varchar(100) default ''
		);`,
		`create unique index trace_task_id_uindex on trace (task_id);`,
		`create index trace_kind_index on trace (kind);`,
		`create index trace_start_time_index on trace (start_time);`,
		`create index trace_location_index on trace (location);`,
		`create table step
		(
			task_id varchar(200) not null,
			time    integer      not null,
			what    varchar(100) default ''
		);`,
		`create index step_task_id_index on step (task_id);`,
	} {
		if _, err := t.Exec(stmt); err != nil {
			return fmt.Errorf("tracing: create schema: %w", err)
		}
	}

	return nil
}

func (t *SQLiteTracer) prepareStatements() error {
	stmt, err := t.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("tracing: prepare: %w", err)
	}

	t.statement = stmt

	stmt, err = t.Prepare(`INSERT INTO step VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("tracing: prepare: %w", err)
	}

	t.stepStatement = stmt

	return nil
}
