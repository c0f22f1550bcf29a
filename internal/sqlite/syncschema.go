package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/random"
	"log/slog"
	"strings"
)

// migrateTo ensures that the db schema matches the target schema given as SQL statements.
//
// We employ a very simple declarative schema migration that:
//
// 1. Drops indexes, triggers and views that differ from the target,
// 2. Deletes deleted tables,
// 3. Creates new tables,
// 4. Migrates changed tables using 12-step schema migration https://www.sqlite.org/lang_altertable.html#otheralter,
// 5. Creates the indexes, triggers and views missing from the current schema.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, targetSchema string) (err error) {
	// PRAGMA foreign_keys and ATTACH are no-ops or errors inside a transaction so the whole migration is
	// pinned to a single connection.
	var conn *sql.Conn
	if conn, err = db.ReadWrite.Conn(ctx); err != nil {
		return errors.Wrap(err, "reserve connection")
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close connection"))
		}
	}()

	// Create schema against a temporary database so that we know what has changed.
	var (
		randomID     string
		dbNameLength uint = 20
	)
	if randomID, err = random.Letters(dbNameLength); err != nil {
		return errors.Wrap(err, "generate random ID")
	}
	targetDSN := fmt.Sprintf("file:%s?mode=memory&cache=shared", randomID)
	var target *sql.DB
	if target, err = sql.Open("sqlite3", targetDSN); err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				errors.SlogError(errors.Wrap(closeErr, "close schema target database")))
		}
	}()
	// The shared in-memory database lives as long as one connection to it stays open.
	target.SetMaxIdleConns(1)
	if _, err = target.ExecContext(ctx, targetSchema); err != nil {
		return errors.Wrap(err, "migrate schema target database")
	}

	// Step 1: Disable foreign key validation temporarily.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: Re-enable foreign key validation.
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "re-enable foreign key validation"))
		}
	}()

	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", targetDSN); err != nil {
		return errors.Wrap(err, "attach schema target database")
	}
	defer func() {
		if _, detachErr := conn.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target database",
				errors.SlogError(errors.Wrap(detachErr, "detach")))
		}
	}()

	// Step 2: Start transaction.
	var tx *sql.Tx
	if tx, err = conn.BeginTx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				errors.SlogError(errors.Wrap(rollbackErr, "rollback")))
		}
	}()

	if err = db.dropStaleObjects(ctx, tx); err != nil {
		return errors.Wrap(err, "drop stale objects")
	}

	// Step 3-7 migrate tables.
	if err = db.migrateTables(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate tables")
	}

	// Step 8: Recreate indexes and triggers associated with table if needed.
	// Step 9: Recreate views associated with table.
	if err = db.createMissingObjects(ctx, tx); err != nil {
		return errors.Wrap(err, "create missing objects")
	}

	// Step 10: Check foreign key constraints.
	var violations []string
	if violations, err = db.queryStringSlice(ctx, tx, "SELECT \"table\" FROM pragma_foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations", slog.Any("tables", violations))
	}

	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}

	return nil
}

// migrateTables ensures table schema is synchronized between databases.
func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	// Step 3: Remember schema (also includes trivial creation and deletion of tables).
	var err error

	var deletedTables []string
	if deletedTables, err = db.queryStringSlice(ctx, tx, `SELECT current.name
FROM sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND target.type IS NULL AND current.name NOT LIKE 'sqlite_%';`); err != nil {
		return errors.Wrap(err, "query deleted tables")
	}
	for _, table := range deletedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q;", table)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table))
		}
	}

	var newTableSQLs []string
	if newTableSQLs, err = db.queryStringSlice(ctx, tx, `SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type = 'table' AND current.type IS NULL AND target.name NOT LIKE 'sqlite_%';`); err != nil {
		return errors.Wrap(err, "query new table SQLs")
	}
	for _, newTableSQL := range newTableSQLs {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", newTableSQL))
		if _, err = tx.ExecContext(ctx, newTableSQL); err != nil {
			return errors.Wrap(err, "create table")
		}
	}

	// Identify tables with changed schema and continue the 12-step schema migration with them.
	var changedTables []changedTable
	if changedTables, err = db.queryChangedTables(ctx, tx); err != nil {
		return errors.Wrap(err, "query changed tables")
	}

	for _, table := range changedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
			slog.String("table", table.name),
			slog.String("current_sql", table.currentSQL),
			slog.String("new_sql", table.newSQL))

		// Step 4: Create tables according to new schema on temporary names.
		tempName := table.name + "_migration_temp"
		tempNameSQL := strings.Replace(table.newSQL, table.name, tempName, 1)
		if _, err = tx.ExecContext(ctx, tempNameSQL); err != nil {
			return errors.Wrap(err, "create new table to temporary name", slog.String("query", tempNameSQL))
		}

		// Step 5: Copy common columns between tables.
		var commonColumns []string
		// Column names are quoted to handle names that are SQLite keywords.
		if commonColumns, err = db.queryStringSlice(ctx, tx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS current
JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = current.name;`,
			sql.Named("table_name", table.name)); err != nil {
			return errors.Wrap(err, "query common columns")
		}
		if len(commonColumns) > 0 {
			common := strings.Join(commonColumns, ", ")
			copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM %q;", //nolint: gosec // we trust the query.
				tempName, common, common, table.name)
			db.logger.LogAttrs(ctx, slog.LevelInfo, "copying data", slog.String("query", copySQL))
			if _, err = tx.ExecContext(ctx, copySQL); err != nil {
				return errors.Wrap(err, "copy data")
			}
		}

		// Step 6: Drop the old table.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q;", table.name)); err != nil {
			return errors.Wrap(err, "drop old table")
		}

		// Step 7: Rename new table to old table's name.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q;", tempName, table.name)); err != nil {
			return errors.Wrap(err, "rename new table")
		}
	}
	return nil
}

// dropStaleObjects drops every index, trigger and view whose definition is absent from the target schema.
func (db *Database) dropStaleObjects(ctx context.Context, tx *sql.Tx) error {
	rows, err := db.queryObjects(ctx, tx, `SELECT current.type, current.name, current.sql
FROM sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target
    ON current.name = target.name AND current.type = target.type AND current.sql = target.sql
WHERE current.type IN ('index', 'trigger', 'view') AND current.sql IS NOT NULL AND target.name IS NULL;`)
	if err != nil {
		return errors.Wrap(err, "query stale objects")
	}
	for _, o := range rows {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping object",
			slog.String("type", o.kind), slog.String("name", o.name))
		stmt := fmt.Sprintf("DROP %s IF EXISTS %q;", strings.ToUpper(o.kind), o.name)
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "drop object", slog.String("query", stmt))
		}
	}
	return nil
}

// createMissingObjects creates the indexes, triggers and views of the target schema missing from the current one.
func (db *Database) createMissingObjects(ctx context.Context, tx *sql.Tx) error {
	rows, err := db.queryObjects(ctx, tx, `SELECT target.type, target.name, target.sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type IN ('index', 'trigger', 'view') AND target.sql IS NOT NULL AND current.name IS NULL
ORDER BY CASE target.type WHEN 'view' THEN 0 WHEN 'index' THEN 1 ELSE 2 END;`)
	if err != nil {
		return errors.Wrap(err, "query missing objects")
	}
	for _, o := range rows {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating object",
			slog.String("type", o.kind), slog.String("query", o.sql))
		if _, err = tx.ExecContext(ctx, o.sql); err != nil {
			return errors.Wrap(err, "create object", slog.String("name", o.name))
		}
	}
	return nil
}

type schemaObject struct {
	kind string
	name string
	sql  string
}

func (db *Database) queryObjects(ctx context.Context, tx *sql.Tx, query string) ([]schemaObject, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer db.closeRows(rows)
	var objects []schemaObject
	for rows.Next() {
		var o schemaObject
		if err = rows.Scan(&o.kind, &o.name, &o.sql); err != nil {
			return nil, errors.Wrap(err, "scan object")
		}
		objects = append(objects, o)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return objects, nil
}

// queryStringSlice returns a slice of strings from a query and its args.
//
// It is used to query a single column from a table.
func (db *Database) queryStringSlice(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer db.closeRows(rows)
	var results []string
	for rows.Next() {
		var result string
		if err = rows.Scan(&result); err != nil {
			return nil, errors.Wrap(err, "scan table")
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return results, nil
}

func (db *Database) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		db.logger.Error("could not close rows", errors.SlogError(errors.Wrap(err, "close rows")))
	}
}

type changedTable struct {
	name       string
	currentSQL string
	newSQL     string
}

// queryChangedTables returns a list of tables that have different schema in the current schema and the target schema.
func (db *Database) queryChangedTables(ctx context.Context, tx *sql.Tx) ([]changedTable, error) {
	rows, err := tx.QueryContext(ctx, `SELECT current.name, current.sql, target.sql
FROM sqlite_schema AS current
JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND current.name NOT LIKE 'sqlite_%' AND current.sql <> target.sql;`)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer db.closeRows(rows)
	var changedTables []changedTable
	for rows.Next() {
		var result changedTable
		if err = rows.Scan(&result.name, &result.currentSQL, &result.newSQL); err != nil {
			return nil, errors.Wrap(err, "scan table")
		}
		changedTables = append(changedTables, result)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return changedTables, nil
}
