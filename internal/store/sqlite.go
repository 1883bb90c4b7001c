package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/proposal-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. The default backend
// for single-operator CLI use.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS proposals (
	id         TEXT PRIMARY KEY,
	bid        TEXT NOT NULL,
	kind       TEXT NOT NULL,
	bid_title  TEXT NOT NULL,
	content    TEXT NOT NULL,
	model      TEXT NOT NULL DEFAULT '',
	usage      TEXT,
	cost_usd   REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS quotes (
	id         TEXT PRIMARY KEY,
	bid        TEXT NOT NULL,
	quote      TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proposals_kind ON proposals (kind);
CREATE INDEX IF NOT EXISTS idx_proposals_created_at ON proposals (created_at DESC);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// SaveProposal persists a generated proposal document.
func (s *SQLiteStore) SaveProposal(ctx context.Context, bid model.BidRequest, doc *model.ProposalDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	bidJSON, err := json.Marshal(bid)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal bid")
	}
	usageJSON, err := json.Marshal(doc.Usage)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal usage")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO proposals (id, bid, kind, bid_title, content, model, usage, cost_usd, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, string(bidJSON), string(doc.Kind), doc.BidTitle, doc.Content, doc.Model, string(usageJSON), doc.CostUSD, doc.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert proposal")
	}
	return nil
}

// GetProposal fetches a proposal by ID. Returns nil if not found.
func (s *SQLiteStore) GetProposal(ctx context.Context, id string) (*model.ProposalDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, bid_title, content, model, usage, cost_usd, created_at FROM proposals WHERE id = ?`,
		id,
	)

	doc, err := scanSQLiteProposal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get proposal")
	}
	return doc, nil
}

// ListProposals lists proposals matching the filter, newest first.
func (s *SQLiteStore) ListProposals(ctx context.Context, filter ProposalFilter) ([]model.ProposalDocument, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if filter.Kind != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, kind, bid_title, content, model, usage, cost_usd, created_at FROM proposals WHERE kind = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			string(filter.Kind), limit, filter.Offset,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, kind, bid_title, content, model, usage, cost_usd, created_at FROM proposals ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			limit, filter.Offset,
		)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list proposals")
	}
	defer rows.Close()

	var docs []model.ProposalDocument
	for rows.Next() {
		doc, err := scanSQLiteProposal(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan proposal")
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate proposals")
	}
	return docs, nil
}

// SaveQuote persists a price quote and returns its generated ID.
func (s *SQLiteStore) SaveQuote(ctx context.Context, bid model.BidRequest, quote *model.PriceQuote) (string, error) {
	id := uuid.NewString()

	bidJSON, err := json.Marshal(bid)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal bid")
	}
	quoteJSON, err := json.Marshal(quote)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal quote")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quotes (id, bid, quote, created_at) VALUES (?, ?, ?, ?)`,
		id, string(bidJSON), string(quoteJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert quote")
	}
	return id, nil
}

// GetQuote fetches a quote by ID. Returns nil if not found.
func (s *SQLiteStore) GetQuote(ctx context.Context, id string) (*model.PriceQuote, error) {
	var quoteJSON string
	err := s.db.QueryRowContext(ctx, `SELECT quote FROM quotes WHERE id = ?`, id).Scan(&quoteJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get quote")
	}

	var quote model.PriceQuote
	if err := json.Unmarshal([]byte(quoteJSON), &quote); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal quote")
	}
	return &quote, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteProposal(scan func(dest ...any) error) (*model.ProposalDocument, error) {
	var doc model.ProposalDocument
	var kind, usageJSON string

	if err := scan(&doc.ID, &kind, &doc.BidTitle, &doc.Content, &doc.Model, &usageJSON, &doc.CostUSD, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.Kind = model.DocumentKind(kind)
	if usageJSON != "" {
		if err := json.Unmarshal([]byte(usageJSON), &doc.Usage); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
