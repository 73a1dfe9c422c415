package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS freight_quotes (
		id                TEXT PRIMARY KEY,
		origin            TEXT NOT NULL,
		transit           TEXT NOT NULL,
		destination       TEXT NOT NULL,
		lowest_cost       NUMERIC NOT NULL,
		lowest_cost_agent TEXT NOT NULL,
		calculation_date  TEXT NOT NULL,
		complete          BOOLEAN NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL,
		metadata          JSONB,
		result            JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS freight_quotes_route_idx
		ON freight_quotes (origin, transit, destination, created_at DESC);
`

const quoteColumns = `id, origin, transit, destination, lowest_cost::text, lowest_cost_agent,
	calculation_date, complete, created_at, metadata, result`

// PostgresStore keeps quotes in a PostgreSQL table
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url and creates the quote table when missing
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	if url == "" {
		return nil, errors.New(errors.TypeConfig, "postgres backend requires a database url")
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse database url", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Storage("failed to create connection pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Storage("failed to ping database", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, errors.Storage("failed to create quote table", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, quote *StoredQuote) error {
	prepare(quote)

	metadata, err := json.Marshal(quote.Metadata)
	if err != nil {
		return errors.Storage("failed to marshal metadata", err)
	}
	result, err := json.Marshal(quote.Result)
	if err != nil {
		return errors.Storage("failed to marshal quote", err)
	}

	query := `
		INSERT INTO freight_quotes (
			id, origin, transit, destination, lowest_cost, lowest_cost_agent,
			calculation_date, complete, created_at, metadata, result
		) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			lowest_cost = EXCLUDED.lowest_cost,
			lowest_cost_agent = EXCLUDED.lowest_cost_agent,
			calculation_date = EXCLUDED.calculation_date,
			complete = EXCLUDED.complete,
			metadata = EXCLUDED.metadata,
			result = EXCLUDED.result
	`
	_, err = s.pool.Exec(ctx, query,
		quote.ID, quote.Route.Origin, quote.Route.Transit, quote.Route.Destination,
		quote.LowestCost.String(), quote.LowestCostAgent, quote.CalculationDate,
		quote.Complete, quote.CreatedAt, metadata, result,
	)
	if err != nil {
		return errors.Storage("failed to save quote", err)
	}
	return nil
}

func scanQuote(row pgx.Row) (*StoredQuote, error) {
	var (
		q        StoredQuote
		cost     string
		metadata []byte
		result   []byte
	)
	err := row.Scan(&q.ID, &q.Route.Origin, &q.Route.Transit, &q.Route.Destination, &cost,
		&q.LowestCostAgent, &q.CalculationDate, &q.Complete, &q.CreatedAt, &metadata, &result)
	if err != nil {
		return nil, err
	}

	if q.LowestCost, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("lowest_cost %q: %w", cost, err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &q.Metadata); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}
	q.Result = &types.CostCalculationResult{}
	if err := json.Unmarshal(result, q.Result); err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	return &q, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM freight_quotes WHERE id = $1`, id)
	q, err := scanQuote(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("quote", id)
	}
	if err != nil {
		return nil, errors.Storage("failed to get quote", err)
	}
	return q, nil
}

// listQuery renders filter as a parameterized query
func listQuery(filter *ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Route != nil {
			where = append(where,
				"origin = "+arg(filter.Route.Origin),
				"transit = "+arg(filter.Route.Transit),
				"destination = "+arg(filter.Route.Destination))
		}
		if filter.Agent != "" {
			where = append(where, "lowest_cost_agent = "+arg(filter.Agent))
		}
		if !filter.Since.IsZero() {
			where = append(where, "created_at >= "+arg(filter.Since))
		}
		if !filter.Until.IsZero() {
			where = append(where, "created_at <= "+arg(filter.Until))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + quoteColumns + " FROM freight_quotes")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id")
	if filter != nil && filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter != nil && filter.Offset > 0 {
		b.WriteString(" OFFSET " + arg(filter.Offset))
	}
	return b.String(), args
}

func (s *PostgresStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	query, args := listQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list quotes", err)
	}
	defer rows.Close()

	quotes := []*StoredQuote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.Storage("failed to scan quote", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to list quotes", err)
	}
	return quotes, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM freight_quotes WHERE id = $1`, id)
	if err != nil {
		return errors.Storage("failed to delete quote", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("quote", id)
	}
	return nil
}

func (s *PostgresStore) GetLatest(ctx context.Context, route Route) (*StoredQuote, error) {
	quotes, err := s.List(ctx, &ListFilter{Route: &route, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.NotFound("quote for route", route.Key())
	}
	return quotes[0], nil
}

func (s *PostgresStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newQuote, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	return compare(oldQuote, newQuote), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
