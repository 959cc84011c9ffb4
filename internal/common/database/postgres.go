package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loan-assessment-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// LoanSchema creates the tables the record worker writes to.
const LoanSchema = `
CREATE TABLE IF NOT EXISTS loan_applications (
	id                    UUID PRIMARY KEY,
	user_id               TEXT NOT NULL,
	loan_amount           NUMERIC(14,2) NOT NULL,
	loan_purpose          TEXT,
	employment_type       TEXT NOT NULL,
	annual_income         NUMERIC(14,2) NOT NULL,
	credit_score          INTEGER NOT NULL,
	loan_term             INTEGER NOT NULL,
	collateral_value      NUMERIC(14,2) NOT NULL DEFAULT 0,
	debt_to_income_ratio  NUMERIC(10,4) NOT NULL,
	credit_history_length INTEGER NOT NULL,
	status                TEXT NOT NULL,
	ai_decision           TEXT,
	ai_confidence         NUMERIC(6,2),
	risk_score            NUMERIC(6,2),
	explanation           JSONB,
	assessment_source     TEXT NOT NULL,
	currency              TEXT NOT NULL DEFAULT 'USD',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_loan_applications_user_id ON loan_applications (user_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL,
	action      TEXT NOT NULL,
	resource_id TEXT,
	details     JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema applies LoanSchema. Every statement is idempotent.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, LoanSchema); err != nil {
		return fmt.Errorf("failed to apply loan schema: %w", err)
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
