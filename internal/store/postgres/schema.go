package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/safenest/safenest/internal/store"
)

// Column describes one column of a table in the current schema.
type Column struct {
	Name     string
	DataType string
	Nullable bool
	Default  *string
}

// Table describes a table in the current schema.
type Table struct {
	Name    string
	Columns []Column
}

// identityTables are truncated by Reset, children first.
var identityTables = []string{"audit_logs", "users", "organizations"}

// Introspect lists the tables and columns of the current schema.
func Introspect(ctx context.Context, pool *pgxpool.Pool) ([]Table, error) {
	query := `
		SELECT table_name, column_name, data_type, is_nullable = 'YES', column_default
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		ORDER BY table_name, ordinal_position
	`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, store.Persistence("introspect schema", mapPostgresError(err))
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var (
			tableName string
			col       Column
		)
		if err := rows.Scan(&tableName, &col.Name, &col.DataType, &col.Nullable, &col.Default); err != nil {
			return nil, store.Persistence("introspect schema", fmt.Errorf("failed to scan column: %w", err))
		}

		if len(tables) == 0 || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Name: tableName})
		}
		tables[len(tables)-1].Columns = append(tables[len(tables)-1].Columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, store.Persistence("introspect schema", mapPostgresError(err))
	}

	return tables, nil
}

// Reset deletes every organization, user and audit row. Row triggers do not
// fire on TRUNCATE, so this is the only way audit rows are ever removed.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE TABLE audit_logs, users, organizations`)
	if err != nil {
		return store.Persistence("reset tables", mapPostgresError(err))
	}

	log.Warn().Strs("tables", identityTables).Msg("Truncated identity tables")
	return nil
}
