package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vallarta-sunsets/intake/internal/domain/model"
)

// uniqueViolation is the Postgres error code raised when the request_id
// constraint rejects a second insert. That constraint, not the application,
// is the final serialization point for near-simultaneous identical requests.
const uniqueViolation = "23505"

// Store queries. Kept as named constants so tests can assert against them.
const (
	insertLeadSQL = `INSERT INTO booking_intents
		(id, name, contact_email, message, origin, status, confidence, request_id, attributed_listing_id, source_path, agent_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	leadColumns = `id, name, contact_email, message, origin, status, confidence, request_id, attributed_listing_id, source_path, agent_id, metadata, created_at`

	getLeadSQL          = `SELECT ` + leadColumns + ` FROM booking_intents WHERE id = $1`
	getLeadByRequestSQL = `SELECT ` + leadColumns + ` FROM booking_intents WHERE request_id = $1`
	updateLeadStatusSQL = `UPDATE booking_intents SET status = $1 WHERE id = $2`
	countLeadsSQL       = `SELECT count(*) FROM booking_intents`

	findEligibleSQL = `SELECT id, name, plan_tier, area, category FROM listings
		WHERE plan_tier <> 'free'
		AND ($1 = '' OR lower(area) = lower($1))
		AND ($2 = '' OR lower(category) = lower($2))`

	getListingSQL = `SELECT id, name, plan_tier, area, category FROM listings WHERE id = $1`

	getSunsetSpotSQL = `SELECT id, slug, name, area FROM sunset_spots WHERE id = $1 OR slug = $1`
)

// Querier is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db      Querier
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &PostgresStore{db: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromQuerier wraps an existing querier. Used by tests.
func NewPostgresFromQuerier(db Querier) *PostgresStore {
	return &PostgresStore{db: db, closeFn: func() {}}
}

// CreateLead inserts the lead, generating id and creation time. A unique
// violation on request_id maps to ErrDuplicateRequestID so the pipeline can
// convert the race loser into an idempotent-replay response.
func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (model.Lead, error) {
	lead.ID = uuid.NewString()
	lead.CreatedAt = time.Now().UTC()

	meta, err := json.Marshal(lead.Metadata)
	if err != nil {
		return model.Lead{}, fmt.Errorf("postgres: marshal metadata: %w", err)
	}

	_, err = s.db.Exec(ctx, insertLeadSQL,
		lead.ID, lead.Name, lead.ContactEmail, lead.Message,
		string(lead.Origin), string(lead.Status),
		lead.Confidence, lead.RequestID, lead.ListingID, lead.SourcePath,
		lead.AgentID, meta, lead.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Lead{}, ErrDuplicateRequestID
		}
		return model.Lead{}, fmt.Errorf("postgres: insert lead: %w", err)
	}
	return lead, nil
}

// GetLead returns a lead by id.
func (s *PostgresStore) GetLead(ctx context.Context, id string) (model.Lead, error) {
	return s.scanLead(s.db.QueryRow(ctx, getLeadSQL, id))
}

// GetLeadByRequestID performs the idempotency point lookup.
func (s *PostgresStore) GetLeadByRequestID(ctx context.Context, requestID string) (model.Lead, error) {
	return s.scanLead(s.db.QueryRow(ctx, getLeadByRequestSQL, requestID))
}

// UpdateLeadStatus applies a reviewer transition under the state machine.
func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, next model.Status) (model.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return model.Lead{}, err
	}
	if !lead.Status.CanTransition(next) {
		return model.Lead{}, ErrInvalidTransition
	}
	if _, err := s.db.Exec(ctx, updateLeadStatusSQL, string(next), id); err != nil {
		return model.Lead{}, fmt.Errorf("postgres: update lead status: %w", err)
	}
	lead.Status = next
	return lead, nil
}

// CountLeads returns the number of stored leads.
func (s *PostgresStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, countLeadsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count leads: %w", err)
	}
	return n, nil
}

// FindEligible returns non-free listings matching the filters.
func (s *PostgresStore) FindEligible(ctx context.Context, area, category string) ([]model.Listing, error) {
	rows, err := s.db.Query(ctx, findEligibleSQL, area, category)
	if err != nil {
		return nil, fmt.Errorf("postgres: find eligible listings: %w", err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		var tier string
		if err := rows.Scan(&l.ID, &l.Name, &tier, &l.Area, &l.Category); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		l.Tier = model.Tier(tier)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate listings: %w", err)
	}
	return out, nil
}

// GetListing returns a listing by id.
func (s *PostgresStore) GetListing(ctx context.Context, id string) (model.Listing, error) {
	var l model.Listing
	var tier string
	err := s.db.QueryRow(ctx, getListingSQL, id).Scan(&l.ID, &l.Name, &tier, &l.Area, &l.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Listing{}, ErrListingNotFound
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("postgres: get listing: %w", err)
	}
	l.Tier = model.Tier(tier)
	return l, nil
}

// GetSunsetSpot returns a spot by id or slug.
func (s *PostgresStore) GetSunsetSpot(ctx context.Context, id string) (model.SunsetSpot, error) {
	var spot model.SunsetSpot
	err := s.db.QueryRow(ctx, getSunsetSpotSQL, id).Scan(&spot.ID, &spot.Slug, &spot.Name, &spot.Area)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SunsetSpot{}, ErrSpotNotFound
	}
	if err != nil {
		return model.SunsetSpot{}, fmt.Errorf("postgres: get sunset spot: %w", err)
	}
	return spot, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.closeFn()
}

func (s *PostgresStore) scanLead(row pgx.Row) (model.Lead, error) {
	var lead model.Lead
	var origin, status string
	var meta []byte
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.ContactEmail, &lead.Message,
		&origin, &status,
		&lead.Confidence, &lead.RequestID, &lead.ListingID, &lead.SourcePath,
		&lead.AgentID, &meta, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Lead{}, ErrNotFound
	}
	if err != nil {
		return model.Lead{}, fmt.Errorf("postgres: scan lead: %w", err)
	}
	lead.Origin = model.Origin(origin)
	lead.Status = model.Status(status)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &lead.Metadata); err != nil {
			return model.Lead{}, fmt.Errorf("postgres: unmarshal metadata: %w", err)
		}
	}
	return lead, nil
}
