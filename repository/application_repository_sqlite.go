package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-advisor/domain"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const createApplicationsTable = `
CREATE TABLE IF NOT EXISTS applications (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL,
	first_name      TEXT,
	last_name       TEXT,
	payload         TEXT NOT NULL,
	prob_default    REAL NOT NULL,
	system_decision TEXT NOT NULL,
	final_decision  TEXT,
	policy_source   TEXT,
	thresholds      TEXT,
	status          TEXT NOT NULL DEFAULT 'OPEN',
	review_notes    TEXT,
	advice          TEXT,
	advice_source   TEXT,
	client_message  TEXT
);
CREATE INDEX IF NOT EXISTS idx_applications_last_name ON applications(last_name);`

const applicationColumns = `id, created_at, updated_at, first_name, last_name, payload, prob_default,
	system_decision, final_decision, policy_source, thresholds, status, review_notes,
	advice, advice_source, client_message`

// ApplicationRepositorySQLite stores applications in a SQLite database.
type ApplicationRepositorySQLite struct {
	db *sql.DB
}

// OpenApplicationRepositorySQLite opens the database at dsn, applies
// pragmas and creates the schema.
func OpenApplicationRepositorySQLite(dsn string) (*ApplicationRepositorySQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(createApplicationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ApplicationRepositorySQLite{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (r *ApplicationRepositorySQLite) Close() error {
	return r.db.Close()
}

func (r *ApplicationRepositorySQLite) Create(ctx context.Context, app *domain.Application) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepositorySQLite) Update(ctx context.Context, app *domain.Application) error {
	return r.update(ctx, app, false)
}

func (r *ApplicationRepositorySQLite) UpdateIfOpen(ctx context.Context, app *domain.Application) error {
	return r.update(ctx, app, true)
}

func (r *ApplicationRepositorySQLite) update(ctx context.Context, app *domain.Application, onlyOpen bool) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	// Move id from the first position to the WHERE clause.
	args = append(args[1:], args[0])
	query := `UPDATE applications SET created_at = ?, updated_at = ?, first_name = ?, last_name = ?,
			payload = ?, prob_default = ?, system_decision = ?, final_decision = ?, policy_source = ?,
			thresholds = ?, status = ?, review_notes = ?, advice = ?, advice_source = ?, client_message = ?
		WHERE id = ?`
	if onlyOpen {
		query += ` AND status = ?`
		args = append(args, string(domain.StatusOpen))
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n > 0 {
		return nil
	}
	if !onlyOpen {
		return ErrNotFound
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM applications WHERE id = ?`, app.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return ErrNotOpen
}

func (r *ApplicationRepositorySQLite) Get(ctx context.Context, id string) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)

	var (
		app                                   domain.Application
		createdAt, updatedAt                  string
		payload                               string
		firstName, lastName, finalDecision    sql.NullString
		policySource, thresholds, reviewNotes sql.NullString
		advice, adviceSource, clientMessage   sql.NullString
		systemDecision, status                string
	)
	err := row.Scan(&app.ID, &createdAt, &updatedAt, &firstName, &lastName, &payload,
		&app.ProbDefault, &systemDecision, &finalDecision, &policySource, &thresholds,
		&status, &reviewNotes, &advice, &adviceSource, &clientMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select application: %w", err)
	}

	if app.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if app.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &app.Payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if thresholds.Valid && thresholds.String != "" {
		if err := json.Unmarshal([]byte(thresholds.String), &app.Thresholds); err != nil {
			return nil, fmt.Errorf("decode thresholds: %w", err)
		}
	}

	app.FirstName = firstName.String
	app.LastName = lastName.String
	app.SystemDecision = domain.Decision(systemDecision)
	app.FinalDecision = domain.Decision(finalDecision.String)
	app.PolicySource = policySource.String
	app.Thresholds.Source = policySource.String
	app.Status = domain.ApplicationStatus(status)
	app.ReviewNotes = reviewNotes.String
	app.Advice = advice.String
	app.AdviceSource = adviceSource.String
	app.ClientMessage = clientMessage.String
	return &app, nil
}

func applicationArgs(app *domain.Application) ([]any, error) {
	payload, err := json.Marshal(app.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	thresholds, err := json.Marshal(app.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("encode thresholds: %w", err)
	}
	return []any{
		app.ID,
		app.CreatedAt.UTC().Format(time.RFC3339Nano),
		app.UpdatedAt.UTC().Format(time.RFC3339Nano),
		nullString(app.FirstName),
		nullString(app.LastName),
		string(payload),
		app.ProbDefault,
		string(app.SystemDecision),
		nullString(string(app.FinalDecision)),
		nullString(app.PolicySource),
		string(thresholds),
		string(app.Status),
		nullString(app.ReviewNotes),
		nullString(app.Advice),
		nullString(app.AdviceSource),
		nullString(app.ClientMessage),
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
