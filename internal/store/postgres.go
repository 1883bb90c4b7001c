package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-cli/internal/db"
	"github.com/sells-group/proposal-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

var _ Store = (*PostgresStore)(nil)

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
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
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS proposals (
	id         TEXT PRIMARY KEY,
	bid        JSONB NOT NULL,
	kind       TEXT NOT NULL,
	bid_title  TEXT NOT NULL,
	content    TEXT NOT NULL,
	model      TEXT NOT NULL DEFAULT '',
	usage      JSONB,
	cost_usd   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quotes (
	id         TEXT PRIMARY KEY,
	bid        JSONB NOT NULL,
	quote      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_proposals_kind ON proposals (kind);
CREATE INDEX IF NOT EXISTS idx_proposals_created_at ON proposals (created_at DESC);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// SaveProposal persists a generated proposal document.
func (s *PostgresStore) SaveProposal(ctx context.Context, bid model.BidRequest, doc *model.ProposalDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	bidJSON, err := json.Marshal(bid)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal bid")
	}
	usageJSON, err := json.Marshal(doc.Usage)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal usage")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO proposals (id, bid, kind, bid_title, content, model, usage, cost_usd, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, bidJSON, string(doc.Kind), doc.BidTitle, doc.Content, doc.Model, usageJSON, doc.CostUSD, doc.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert proposal")
	}
	return nil
}

// GetProposal fetches a proposal by ID. Returns nil if not found.
func (s *PostgresStore) GetProposal(ctx context.Context, id string) (*model.ProposalDocument, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, bid_title, content, model, usage, cost_usd, created_at FROM proposals WHERE id = $1`,
		id,
	)

	doc, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get proposal")
	}
	return doc, nil
}

// ListProposals lists proposals matching the filter, newest first.
func (s *PostgresStore) ListProposals(ctx context.Context, filter ProposalFilter) ([]model.ProposalDocument, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if filter.Kind != "" {
		rows, err = s.pool.Query(ctx,
			`SELECT id, kind, bid_title, content, model, usage, cost_usd, created_at FROM proposals WHERE kind = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			string(filter.Kind), limit, filter.Offset,
		)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, kind, bid_title, content, model, usage, cost_usd, created_at FROM proposals ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, filter.Offset,
		)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list proposals")
	}
	defer rows.Close()

	var docs []model.ProposalDocument
	for rows.Next() {
		doc, err := scanProposal(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan proposal")
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate proposals")
	}
	return docs, nil
}

// SaveQuote persists a price quote and returns its generated ID.
func (s *PostgresStore) SaveQuote(ctx context.Context, bid model.BidRequest, quote *model.PriceQuote) (string, error) {
	id := uuid.NewString()

	bidJSON, err := json.Marshal(bid)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal bid")
	}
	quoteJSON, err := json.Marshal(quote)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal quote")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO quotes (id, bid, quote, created_at) VALUES ($1, $2, $3, $4)`,
		id, bidJSON, quoteJSON, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert quote")
	}
	return id, nil
}

// GetQuote fetches a quote by ID. Returns nil if not found.
func (s *PostgresStore) GetQuote(ctx context.Context, id string) (*model.PriceQuote, error) {
	var quoteJSON []byte
	err := s.pool.QueryRow(ctx, `SELECT quote FROM quotes WHERE id = $1`, id).Scan(&quoteJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get quote")
	}

	var quote model.PriceQuote
	if err := json.Unmarshal(quoteJSON, &quote); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal quote")
	}
	return &quote, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanProposal(row pgx.Row) (*model.ProposalDocument, error) {
	var doc model.ProposalDocument
	var kind string
	var usageJSON []byte

	if err := row.Scan(&doc.ID, &kind, &doc.BidTitle, &doc.Content, &doc.Model, &usageJSON, &doc.CostUSD, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.Kind = model.DocumentKind(kind)
	if len(usageJSON) > 0 {
		if err := json.Unmarshal(usageJSON, &doc.Usage); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
