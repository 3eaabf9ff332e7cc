package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrEmptyCriteria     = errors.New("criteria must not be empty")
	ErrEmptyRow          = errors.New("no columns given")
)

// StoreError reports a failed table operation.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type Column struct {
	Name string
	Type string
}

// Row maps column names to values.
type Row map[string]any

// Criteria is a conjunction of column = value equalities.
type Criteria map[string]any

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a table-name-parameterized wrapper around a single SQLite
// handle. Values always travel as bound parameters; table and column names
// are expected to be call-site constants.
type Store struct {
	db *sql.DB
}

// NewStore opens bookmarks.db inside dataDir.
func NewStore(dataDir string) (*Store, error) {
	return Open(filepath.Join(dataDir, "bookmarks.db"))
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, &StoreError{Op: "open", Table: path, Err: err}
	}
	// one connection for the process lifetime
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Table: path, Err: err}
	}
	return &Store{db: db}, nil
}

func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateTable creates name if it does not exist, with columns in the given
// order. An existing table is left alone even if its shape differs.
func (s *Store) CreateTable(ctx context.Context, name string, columns []Column) error {
	if len(columns) == 0 {
		return &StoreError{Op: "create", Table: name, Err: ErrEmptyRow}
	}
	defs := make([]string, 0, len(columns))
	for _, c := range columns {
		if !identRe.MatchString(c.Name) {
			return &StoreError{Op: "create", Table: name, Err: fmt.Errorf("%w: %q", ErrInvalidIdentifier, c.Name)}
		}
		defs = append(defs, c.Name+" "+c.Type)
	}
	if err := checkIdent(name); err != nil {
		return &StoreError{Op: "create", Table: name, Err: err}
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", name, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return &StoreError{Op: "create", Table: name, Err: err}
	}
	return nil
}

// Insert adds one row and returns the id the engine assigned to it.
func (s *Store) Insert(ctx context.Context, name string, row Row) (int64, error) {
	if len(row) == 0 {
		return 0, &StoreError{Op: "insert", Table: name, Err: ErrEmptyRow}
	}
	cols, args, err := split(name, row)
	if err != nil {
		return 0, &StoreError{Op: "insert", Table: name, Err: err}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), placeholders)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &StoreError{Op: "insert", Table: name, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StoreError{Op: "insert", Table: name, Err: err}
	}
	return id, nil
}

// Select returns a cursor over rows matching every criterion. Nil or empty
// criteria match all rows. orderBy, when set, sorts ascending; otherwise
// the order is whatever the engine scans.
func (s *Store) Select(ctx context.Context, name string, criteria Criteria, orderBy string) (*Rows, error) {
	if err := checkIdent(name); err != nil {
		return nil, &StoreError{Op: "select", Table: name, Err: err}
	}
	query := "SELECT * FROM " + name

	where, args, err := whereClause(criteria)
	if err != nil {
		return nil, &StoreError{Op: "select", Table: name, Err: err}
	}
	query += where

	if orderBy != "" {
		if err := checkIdent(orderBy); err != nil {
			return nil, &StoreError{Op: "select", Table: name, Err: err}
		}
		query += " ORDER BY " + orderBy
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "select", Table: name, Err: err}
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, &StoreError{Op: "select", Table: name, Err: err}
	}
	return &Rows{table: name, rows: rows, cols: cols}, nil
}

// Update sets changes on every row matching criteria and returns how many
// rows were modified. Zero is not an error.
func (s *Store) Update(ctx context.Context, name string, criteria Criteria, changes Row) (int64, error) {
	if len(criteria) == 0 {
		return 0, &StoreError{Op: "update", Table: name, Err: ErrEmptyCriteria}
	}
	if len(changes) == 0 {
		return 0, &StoreError{Op: "update", Table: name, Err: ErrEmptyRow}
	}
	cols, args, err := split(name, changes)
	if err != nil {
		return 0, &StoreError{Op: "update", Table: name, Err: err}
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}

	where, whereArgs, err := whereClause(criteria)
	if err != nil {
		return 0, &StoreError{Op: "update", Table: name, Err: err}
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s;", name, strings.Join(sets, ", "), where)
	return s.exec(ctx, "update", name, query, args)
}

// Delete removes every row matching criteria and returns how many went.
func (s *Store) Delete(ctx context.Context, name string, criteria Criteria) (int64, error) {
	if len(criteria) == 0 {
		return 0, &StoreError{Op: "delete", Table: name, Err: ErrEmptyCriteria}
	}
	if err := checkIdent(name); err != nil {
		return 0, &StoreError{Op: "delete", Table: name, Err: err}
	}
	where, args, err := whereClause(criteria)
	if err != nil {
		return 0, &StoreError{Op: "delete", Table: name, Err: err}
	}

	query := fmt.Sprintf("DELETE FROM %s%s;", name, where)
	return s.exec(ctx, "delete", name, query, args)
}

func (s *Store) exec(ctx context.Context, op, name, query string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &StoreError{Op: op, Table: name, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StoreError{Op: op, Table: name, Err: err}
	}
	return n, nil
}

// split returns the row's columns in sorted order with their values
// paired at the same index.
func split(name string, row map[string]any) ([]string, []any, error) {
	if err := checkIdent(name); err != nil {
		return nil, nil, err
	}
	cols := make([]string, 0, len(row))
	for c := range row {
		if err := checkIdent(c); err != nil {
			return nil, nil, err
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = row[c]
	}
	return cols, args, nil
}

func whereClause(criteria Criteria) (string, []any, error) {
	if len(criteria) == 0 {
		return "", nil, nil
	}
	cols, args, err := split("where", criteria)
	if err != nil {
		return "", nil, err
	}
	preds := make([]string, len(cols))
	for i, c := range cols {
		preds[i] = c + " = ?"
	}
	return " WHERE " + strings.Join(preds, " AND "), args, nil
}

func checkIdent(s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return nil
}

// Rows is a forward-only cursor returned by Select. Callers must Close it
// unless they drain it with All.
type Rows struct {
	table string
	rows  *sql.Rows
	cols  []string
	cur   Row
	err   error
}

func (r *Rows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	vals := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = err
		return false
	}

	row := make(Row, len(r.cols))
	for i, c := range r.cols {
		if b, ok := vals[i].([]byte); ok {
			row[c] = string(b)
			continue
		}
		row[c] = vals[i]
	}
	r.cur = row
	return true
}

// Row returns the row loaded by the last successful Next.
func (r *Rows) Row() Row {
	return r.cur
}

func (r *Rows) Err() error {
	if r.err == nil {
		r.err = r.rows.Err()
	}
	if r.err != nil {
		return &StoreError{Op: "select", Table: r.table, Err: r.err}
	}
	return nil
}

func (r *Rows) Close() error {
	return r.rows.Close()
}

// All drains and closes the cursor.
func (r *Rows) All() ([]Row, error) {
	defer r.Close()
	var out []Row
	for r.Next() {
		out = append(out, r.Row())
	}
	return out, r.Err()
}
