package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLOptions tunes the portable adapter to a driver's dialect.
type SQLOptions struct {
	// Placeholder renders the n-th (1-based) bind parameter. Nil means "?".
	Placeholder func(n int) string

	// MultiRow, when > 1, makes CopyInto send that many rows per INSERT
	// statement instead of one prepared INSERT per row.
	MultiRow int

	// CopyIn, when set, returns the statement text of a driver bulk-copy
	// statement for table/columns (e.g. mssql.CopyIn). Rows are sent with one
	// ExecContext each and flushed with a final argument-less ExecContext.
	CopyIn func(table string, columns []string) string

	// MaxOpenConns caps the pool. Zero leaves the driver default.
	MaxOpenConns int
}

// Question renders "?" placeholders (SQLite, MySQL).
func Question(int) string { return "?" }

// AtP renders SQL Server style placeholders: @p1, @p2, ...
func AtP(n int) string { return fmt.Sprintf("@p%d", n) }

//
// =======================
//  Testability-first seams
// =======================
//
// The adapter talks to small interfaces instead of *sql.DB/*sql.Tx/*sql.Stmt
// so unit tests can inject light fakes with no sockets. The real* wrappers
// below adapt the database/sql types.
//

// stmtCore is the minimal subset of *sql.Stmt we use.
type stmtCore interface {
	ExecContext(ctx context.Context, args ...any) (sql.Result, error)
	Close() error
}

// sqlTxCore is the subset of a transaction that sqlTx uses.
type sqlTxCore interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (stmtCore, error)
	Commit() error
	Rollback() error
}

// rowScanner is the subset of *sql.Row we use.
type rowScanner interface {
	Scan(dest ...any) error
}

// sqlDBCore is the subset of a pool that sqlDB uses.
type sqlDBCore interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) rowScanner
	BeginTx(ctx context.Context, opts *sql.TxOptions) (sqlTxCore, error)
	Close() error
}

type realStmt struct{ s *sql.Stmt }

func (r realStmt) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	return r.s.ExecContext(ctx, args...)
}
func (r realStmt) Close() error { return r.s.Close() }

type realSQLTx struct{ tx *sql.Tx }

func (r realSQLTx) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return r.tx.ExecContext(ctx, q, args...)
}
func (r realSQLTx) PrepareContext(ctx context.Context, q string) (stmtCore, error) {
	st, err := r.tx.PrepareContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return realStmt{st}, nil
}
func (r realSQLTx) Commit() error   { return r.tx.Commit() }
func (r realSQLTx) Rollback() error { return r.tx.Rollback() }

type realSQLDB struct{ db *sql.DB }

func (r realSQLDB) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, q, args...)
}
func (r realSQLDB) QueryRowContext(ctx context.Context, q string, args ...any) rowScanner {
	return r.db.QueryRowContext(ctx, q, args...)
}
func (r realSQLDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (sqlTxCore, error) {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return realSQLTx{tx: tx}, nil
}
func (r realSQLDB) Close() error { return r.db.Close() }

//
// ===================
//  sqlDB (DB adapter)
// ===================
//

type sqlDB struct {
	db   sqlDBCore
	opts SQLOptions
}

// NewSQLDB opens a database/sql pool for driver and pings it to confirm
// connectivity. The driver must already be registered.
func NewSQLDB(ctx context.Context, driver, dsn string, opts SQLOptions) (DB, error) {
	d, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}
	if opts.MaxOpenConns > 0 {
		d.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := d.PingContext(ctx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}
	return &sqlDB{db: realSQLDB{db: d}, opts: opts}, nil
}

// Exec forwards a statement to the underlying pool.
func (s *sqlDB) Exec(ctx context.Context, q string, args ...any) error {
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// QueryInt scans the single integer returned by q.
func (s *sqlDB) QueryInt(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// BeginTx starts a transaction and returns a Tx adapter.
func (s *sqlDB) BeginTx(ctx context.Context) (Tx, error) {
	raw, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: raw, opts: s.opts}, nil
}

// Close closes the underlying pool.
func (s *sqlDB) Close(ctx context.Context) error { return s.db.Close() }

//
// ==================
//  sqlTx (Tx adapter)
// ==================
//

type sqlTx struct {
	tx   sqlTxCore
	opts SQLOptions
}

// Exec forwards execution to the transaction and returns any error.
func (t *sqlTx) Exec(ctx context.Context, q string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// CopyInto inserts rows into table using the fastest path the options allow:
// a driver bulk copy, multi-row INSERTs, or one prepared INSERT per row. It
// returns the number of rows inserted so far when it fails.
func (t *sqlTx) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	switch {
	case t.opts.CopyIn != nil:
		return t.copyIn(ctx, table, columns, rows)
	case t.opts.MultiRow > 1:
		return t.insertMulti(ctx, table, columns, rows)
	}

	stmt, err := t.tx.PrepareContext(ctx, insertSQL(table, columns, 1, t.opts.Placeholder))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (t *sqlTx) copyIn(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := t.tx.PrepareContext(ctx, t.opts.CopyIn(table, columns))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	if res == nil {
		return int64(len(rows)), nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (t *sqlTx) insertMulti(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var inserted int64
	for start := 0; start < len(rows); start += t.opts.MultiRow {
		end := min(start+t.opts.MultiRow, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
			}
			args = append(args, row...)
		}
		if _, err := t.tx.ExecContext(ctx, insertSQL(table, columns, len(chunk), t.opts.Placeholder), args...); err != nil {
			return inserted, err
		}
		inserted += int64(len(chunk))
	}
	return inserted, nil
}

// Commit commits the active transaction.
func (t *sqlTx) Commit(ctx context.Context) error { return t.tx.Commit() }

// Rollback aborts the active transaction.
func (t *sqlTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }

// insertSQL builds "INSERT INTO table (c1,c2) VALUES (p1,p2),(p3,p4)" for n
// rows. Placeholders are numbered across the whole statement.
func insertSQL(table string, columns []string, n int, ph func(int) string) string {
	if ph == nil {
		ph = Question
	}
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ","))
	arg := 0
	for r := 0; r < n; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteByte(',')
			}
			arg++
			b.WriteString(ph(arg))
		}
		b.WriteByte(')')
	}
	return b.String()
}

//
// =======================
//  Test-only constructors
// =======================
//

// newSQLTxForTest wraps a fake sqlTxCore as a Tx.
func newSQLTxForTest(core sqlTxCore, opts SQLOptions) *sqlTx { return &sqlTx{tx: core, opts: opts} }

// newSQLDBForTest wraps a fake sqlDBCore as a DB.
func newSQLDBForTest(core sqlDBCore) *sqlDB { return &sqlDB{db: core} }
