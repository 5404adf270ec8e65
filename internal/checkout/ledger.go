package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// Session is the durable record of one checkout invocation.
type Session struct {
	ID           string
	UserID       string
	Status       State
	CartSnapshot []byte
	Total        float64
	UpdatedAt    time.Time
}

// OutboxEvent is a completed checkout waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
}

// Ledger records checkout sessions, their settlement steps and the
// completion outbox. The workflow writes to it; the outbox poller
// drains it.
type Ledger interface {
	CreateSession(ctx context.Context, s *Session) error
	SetStatus(ctx context.Context, id string, status State) error
	MarkStepCompleted(ctx context.Context, id, step string) error
	CompleteSession(ctx context.Context, id string, payload []byte, status State) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, eventID int64) error
	Close() error
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// PostgresLedger is the production Ledger.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(cred *Credentials) (*PostgresLedger, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresLedger{db: db}, nil
}

func (l *PostgresLedger) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(l.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (l *PostgresLedger) CreateSession(ctx context.Context, s *Session) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO checkout_sessions (id, user_id, status, cart_snapshot, total_amount)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, string(s.Status), s.CartSnapshot, s.Total)
	if err != nil {
		return fmt.Errorf("failed to create checkout session: %w", err)
	}
	return nil
}

func (l *PostgresLedger) SetStatus(ctx context.Context, id string, status State) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE checkout_sessions SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update checkout status: %w", err)
	}
	return nil
}

func (l *PostgresLedger) MarkStepCompleted(ctx context.Context, id, step string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO checkout_steps (checkout_id, step)
		VALUES ($1, $2)
		ON CONFLICT (checkout_id, step) DO NOTHING`,
		id, step)
	if err != nil {
		return fmt.Errorf("failed to record checkout step: %w", err)
	}
	return nil
}

// CompleteSession flips the session to its terminal status and writes
// the outbox row in one transaction, so a completed checkout can never
// miss its event.
func (l *PostgresLedger) CompleteSession(ctx context.Context, id string, payload []byte, status State) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE checkout_sessions SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update checkout status: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_outbox (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)`,
		id, "checkout.completed", payload)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

func (l *PostgresLedger) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM checkout_outbox
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		ev := &OutboxEvent{}
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (l *PostgresLedger) MarkEventProcessed(ctx context.Context, eventID int64) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE checkout_outbox SET processed_at = now() WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Close() error {
	return l.db.Close()
}
