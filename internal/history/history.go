// Package history records each analysis run so later runs can be compared
// against earlier ones.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultLimit caps List when no limit is given.
const DefaultLimit = 20

// timeLayout is fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Previous when no run matches.
var ErrNotFound = errors.New("history: no recorded run")

//go:embed schema.sql
var schema string

// Run is one recorded analysis.
type Run struct {
	ID             string
	CreatedAt      time.Time
	Year           int
	Conversations  int
	Messages       int
	HumanWords     int
	AssistantWords int
	DaysActive     int
	TotalCO2Kg     float64
	Chronotype     string
}

// NewRun captures the headline numbers of a summary under a fresh run ID.
func NewRun(sum *wrapped.Summary, now time.Time) Run {
	r := Run{ID: uuid.NewString(), CreatedAt: now.UTC()}
	if sum == nil {
		return r
	}
	h := sum.HeadlineStats
	r.Year = sum.Year
	r.Conversations = h.TotalConversations
	r.Messages = h.TotalMessages
	r.HumanWords = h.TotalWordsYouWrote
	r.AssistantWords = h.TotalWordsClaudeWrote
	r.DaysActive = h.DaysActive
	r.TotalCO2Kg = sum.CarbonFootprint.TotalCO2Kg
	r.Chronotype = sum.TimePatterns.Chronotype
	return r
}

// Store persists runs in SQLite or Postgres.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the history database and applies the schema. For SQLite
// the DSN is a file path whose parent directory is created if needed.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create history dir: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("history: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run.
func (s *Store) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO runs (id, created_at, year, conversations, messages, human_words,
			assistant_words, days_active, total_co2_kg, chronotype)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.CreatedAt.UTC().Format(timeLayout), r.Year, r.Conversations, r.Messages,
		r.HumanWords, r.AssistantWords, r.DaysActive, r.TotalCO2Kg, r.Chronotype,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(selectRuns+` ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Previous returns the latest run recorded for year, or ErrNotFound.
func (s *Store) Previous(ctx context.Context, year int) (Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectRuns+` WHERE year = ? ORDER BY created_at DESC, id DESC LIMIT 1`), year)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

const selectRuns = `SELECT id, created_at, year, conversations, messages, human_words,
	assistant_words, days_active, total_co2_kg, chronotype FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var created string
	err := sc.Scan(&r.ID, &created, &r.Year, &r.Conversations, &r.Messages, &r.HumanWords,
		&r.AssistantWords, &r.DaysActive, &r.TotalCO2Kg, &r.Chronotype)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan run: %w", err)
	}
	r.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return r, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
	}
	return r, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
