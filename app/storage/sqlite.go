package storage

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"GoACE/app/playbook"
)

const timeLayout = "2006-01-02 15:04:05"

var _ Interface = &SQLiteStorage{}

type SQLiteStorage struct {
	db *sql.DB
}

func getDBPath() string {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		projectDir, err := os.Getwd()
		if err != nil {
			log.Fatalf("❌ Error getting project directory: %v", err)
		}
		defaultPath := filepath.Join(projectDir, "data", "database.db")
		if err := os.MkdirAll(filepath.Dir(defaultPath), os.ModePerm); err != nil {
			log.Fatalf("❌ Error creating data directory: %v", err)
		}
		log.Printf("📂 DB_PATH not set, using default: %s", defaultPath)
		return defaultPath
	}
	return dbPath
}

func NewSQLiteStorage() *SQLiteStorage {
	s, err := newSQLiteStorage(getDBPath())
	if err != nil {
		log.Fatalf("❌ Error opening SQLite DB: %v", err)
	}
	return s
}

func newSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS cycles (
            id TEXT NOT NULL PRIMARY KEY,
            task_id TEXT NOT NULL,
            task TEXT NOT NULL,
            state TEXT NOT NULL,
            generator TEXT NULL,
            reflector TEXT NULL,
            curator TEXT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_cycles_task_id ON cycles (task_id);
        CREATE TABLE IF NOT EXISTS playbook (
            pattern TEXT NOT NULL PRIMARY KEY,
            context TEXT NOT NULL DEFAULT '',
            evidence INTEGER NOT NULL,
            version INTEGER NOT NULL,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
    `)
	if err != nil {
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) SaveCycle(ctx context.Context, row CycleRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (id, task_id, task, state, generator, reflector, curator, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, datetime(?))
		 ON CONFLICT(id) DO UPDATE SET
		   state = excluded.state,
		   generator = excluded.generator,
		   reflector = excluded.reflector,
		   curator = excluded.curator`,
		row.ID, row.TaskID, row.Task, row.State, row.Generator, row.Reflector, row.Curator,
		row.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		log.Printf("⚠️ Error saving cycle %s: %v", row.ID, err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) GetCyclesByTaskID(ctx context.Context, taskID string) ([]CycleRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, task, state, generator, reflector, curator, created_at
		 FROM cycles
		 WHERE task_id = ?
		 ORDER BY created_at ASC, id ASC`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []CycleRow
	for rows.Next() {
		var row CycleRow
		var createdAt string
		if err = rows.Scan(&row.ID, &row.TaskID, &row.Task, &row.State,
			&row.Generator, &row.Reflector, &row.Curator, &createdAt); err != nil {
			log.Printf("⚠️ Error scanning cycle row for task %s: %v", taskID, err)
			continue
		}
		row.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		history = append(history, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *SQLiteStorage) SavePlaybook(ctx context.Context, entries []playbook.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO playbook (pattern, context, evidence, version, updated_at)
			 VALUES (?, ?, ?, ?, datetime(?))
			 ON CONFLICT(pattern) DO UPDATE SET
			   context = excluded.context,
			   evidence = excluded.evidence,
			   version = excluded.version,
			   updated_at = excluded.updated_at`,
			e.Pattern, e.Context, e.Evidence, e.Version, time.Now().UTC().Format(timeLayout),
		); err != nil {
			log.Printf("⚠️ Error saving playbook entry %q: %v", e.Pattern, err)
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) LoadPlaybook(ctx context.Context) ([]playbook.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern, context, evidence, version FROM playbook ORDER BY evidence DESC, pattern ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []playbook.Entry
	for rows.Next() {
		var e playbook.Entry
		if err = rows.Scan(&e.Pattern, &e.Context, &e.Evidence, &e.Version); err != nil {
			log.Printf("⚠️ Error scanning playbook row: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
