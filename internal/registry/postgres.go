package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"clusterScope/internal/model"
)

// LoadPostgres reads exchange entries from the exchange_addresses table.
// Same skip-on-bad-address semantics as the CSV loader.
func LoadPostgres(ctx context.Context, dsn string, logger *zap.Logger) ([]Entry, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `SELECT address, COALESCE(label, '') FROM exchange_addresses`)
	if err != nil {
		return nil, fmt.Errorf("query exchange_addresses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var rawAddr, label string
		if err := rows.Scan(&rawAddr, &label); err != nil {
			return nil, fmt.Errorf("scan exchange row: %w", err)
		}

		addr, err := model.NormalizeAddress(rawAddr)
		if err != nil {
			logger.Warn("skip exchange row with bad address", zap.String("address", rawAddr))
			continue
		}
		entries = append(entries, Entry{Address: addr, Label: label})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read exchange rows: %w", err)
	}

	return entries, nil
}
