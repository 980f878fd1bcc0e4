package ticket

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/xaenox/aidesk/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tickets (
	seq          BIGSERIAL PRIMARY KEY,
	id           TEXT UNIQUE NOT NULL,
	text         TEXT NOT NULL,
	source       TEXT NOT NULL,
	contact_info JSONB,
	status       TEXT NOT NULL,
	translations JSONB,
	result       JSONB NOT NULL,
	rating       TEXT,
	created_at   TIMESTAMPTZ NOT NULL
)`

// PostgresConfig describes the ticket database connection.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore is the relational ticket log backend.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Append(ctx context.Context, t models.Ticket) error {
	contact, _ := json.Marshal(t.ContactInfo)
	translations, _ := json.Marshal(t.Translations)
	result, _ := json.Marshal(t.Result)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO tickets (id, text, source, contact_info, status, translations, result, rating, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Text, t.Source, contact, t.Status, translations, result, t.Rating, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (models.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, text, source, contact_info, status, translations, result, rating, created_at
FROM tickets WHERE id = $1`, id)
	return scanTicket(row)
}

func (s *PostgresStore) Update(ctx context.Context, t models.Ticket) error {
	contact, _ := json.Marshal(t.ContactInfo)
	translations, _ := json.Marshal(t.Translations)
	result, _ := json.Marshal(t.Result)

	res, err := s.db.ExecContext(ctx, `
UPDATE tickets SET text = $2, source = $3, contact_info = $4, status = $5,
	translations = $6, result = $7, rating = $8
WHERE id = $1`,
		t.ID, t.Text, t.Source, contact, t.Status, translations, result, t.Rating)
	if err != nil {
		return fmt.Errorf("update ticket %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	return s.query(ctx, `
SELECT id, text, source, contact_info, status, translations, result, rating, created_at
FROM tickets WHERE status = $1 ORDER BY seq`, status)
}

func (s *PostgresStore) All(ctx context.Context) ([]models.Ticket, error) {
	return s.query(ctx, `
SELECT id, text, source, contact_info, status, translations, result, rating, created_at
FROM tickets ORDER BY seq`)
}

func (s *PostgresStore) Rate(ctx context.Context, index int, rating string) error {
	if index < 0 {
		return ErrNotFound
	}
	// The log is index-addressed by position, so resolve the index to a
	// row through the insertion order.
	res, err := s.db.ExecContext(ctx, `
UPDATE tickets SET rating = $2
WHERE seq = (SELECT seq FROM tickets ORDER BY seq OFFSET $1 LIMIT 1)`, index, rating)
	if err != nil {
		return fmt.Errorf("rate ticket at %d: %w", index, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return fmt.Errorf("clear tickets: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var t models.Ticket
	var contact, translations, result []byte
	var rating sql.NullString

	err := row.Scan(&t.ID, &t.Text, &t.Source, &contact, &t.Status, &translations, &result, &rating, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, ErrNotFound
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("scan ticket: %w", err)
	}

	if len(contact) > 0 {
		_ = json.Unmarshal(contact, &t.ContactInfo)
	}
	if len(translations) > 0 {
		_ = json.Unmarshal(translations, &t.Translations)
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &t.Result); err != nil {
			return models.Ticket{}, fmt.Errorf("decode ticket result: %w", err)
		}
	}
	t.Rating = rating.String
	return t, nil
}
