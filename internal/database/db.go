package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Alias1177/bullbear/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS market_states (
			id BIGSERIAL PRIMARY KEY,
			evaluated_at TIMESTAMPTZ NOT NULL,
			state TEXT NOT NULL,
			trend TEXT NOT NULL,
			funding TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			ath_drawdown DOUBLE PRECISION NOT NULL,
			risk_thermometer TEXT NOT NULL,
			etf_accelerator TEXT NOT NULL,
			payload JSONB NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS market_states_evaluated_at_idx
		ON market_states (evaluated_at DESC)
	`)
	return err
}

// SaveResult persists one evaluation. The full result is stored as JSON next
// to the queryable label columns.
func (db *DB) SaveResult(ctx context.Context, res *models.EvaluationResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("serializing result: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO market_states (
			evaluated_at, state, trend, funding, risk_level,
			confidence, ath_drawdown, risk_thermometer, etf_accelerator, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		res.EvaluatedAt, res.State, res.Trend, res.Funding, res.RiskLevel,
		res.Confidence, res.Validation.ATHDrawdown,
		res.Validation.RiskThermometer, res.Validation.EtfAccelerator,
		payload,
	)
	if err != nil {
		return fmt.Errorf("inserting market state: %w", err)
	}
	return nil
}

// LatestResult returns the most recent stored evaluation, or nil when the
// table is empty.
func (db *DB) LatestResult(ctx context.Context) (*models.EvaluationResult, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, `
		SELECT payload FROM market_states
		ORDER BY evaluated_at DESC
		LIMIT 1
	`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest state: %w", err)
	}

	var res models.EvaluationResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("deserializing result: %w", err)
	}
	return &res, nil
}
