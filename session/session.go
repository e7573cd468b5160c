// Package session implements a per-request unit of work over a database
// pool: staged inserts, updates and deletes are flushed in order inside one
// transaction on Commit, reads go through the open transaction if there is
// one and through the pool otherwise.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rediwo/refdata/database"
	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/types"
	"github.com/rediwo/refdata/utils"
)

// ErrNotFound is returned by Refresh when the row no longer exists
var ErrNotFound = errors.New("record not found")

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

type pendingOp struct {
	kind   opKind
	schema *schema.Schema
	record types.Record
}

// Session is not safe for concurrent use; each request opens its own.
type Session struct {
	db       *database.DB
	registry *schema.Registry
	tx       *sql.Tx
	pending  []pendingOp
	now      func() time.Time
}

func New(db *database.DB, registry *schema.Registry) *Session {
	return &Session{
		db:       db,
		registry: registry,
		now:      time.Now,
	}
}

func (s *Session) DB() *database.DB {
	return s.db
}

func (s *Session) Registry() *schema.Registry {
	return s.registry
}

// InTransaction reports whether statements currently go through a transaction
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

// Pending returns the number of staged writes
func (s *Session) Pending() int {
	return len(s.pending)
}

// Begin opens a transaction explicitly. Commit and Rollback end it.
func (s *Session) Begin(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Session) querier() database.Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db.SQL()
}

// Query runs a statement written with "?" placeholders and scans every row
func (s *Session) Query(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	query = s.db.Rebind(query)
	start := time.Now()
	rows, err := s.querier().QueryContext(ctx, query, args...)
	s.db.Logger().LogSQL(query, args, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return utils.ScanRowsToMaps(rows)
}

// QueryCount runs a statement returning a single integer
func (s *Session) QueryCount(ctx context.Context, query string, args ...any) (int64, error) {
	query = s.db.Rebind(query)
	start := time.Now()
	rows, err := s.querier().QueryContext(ctx, query, args...)
	s.db.Logger().LogSQL(query, args, time.Since(start))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	return utils.ScanCount(rows)
}

// Exec runs a statement written with "?" placeholders
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = s.db.Rebind(query)
	start := time.Now()
	result, err := s.querier().ExecContext(ctx, query, args...)
	s.db.Logger().LogSQL(query, args, time.Since(start))
	return result, err
}

func (s *Session) stamp() time.Time {
	// storage keeps microseconds at best
	return s.now().UTC().Truncate(time.Microsecond)
}

// Add stages an insert. A missing UUID identifier is generated and both
// timestamps are set; the record is updated in place.
func (s *Session) Add(model string, record types.Record) error {
	sch, err := s.registry.Get(model)
	if err != nil {
		return err
	}
	if err := checkColumns(sch, record); err != nil {
		return err
	}

	pk, err := sch.GetPrimaryKey()
	if err != nil {
		return err
	}
	if record[pk.Name] == nil {
		if pk.Type != schema.FieldTypeUUID {
			return fmt.Errorf("%s: identifier %s is required", model, pk.Name)
		}
		record[pk.Name] = uuid.NewString()
	}

	now := s.stamp()
	if sch.HasField(schema.CreatedAtField) {
		record[schema.CreatedAtField] = now
	}
	if sch.HasField(schema.UpdatedAtField) {
		record[schema.UpdatedAtField] = now
	}

	s.pending = append(s.pending, pendingOp{kind: opInsert, schema: sch, record: record})
	return nil
}

// Update stages an update of every scalar column present in record.
// updated_at never moves backwards.
func (s *Session) Update(model string, record types.Record) error {
	sch, err := s.registry.Get(model)
	if err != nil {
		return err
	}
	if err := checkColumns(sch, record); err != nil {
		return err
	}
	if _, err := identifier(sch, record); err != nil {
		return err
	}

	if sch.HasField(schema.UpdatedAtField) {
		now := s.stamp()
		if prev, ok := record[schema.UpdatedAtField].(time.Time); ok && prev.After(now) {
			now = prev
		}
		record[schema.UpdatedAtField] = now
	}

	s.pending = append(s.pending, pendingOp{kind: opUpdate, schema: sch, record: record})
	return nil
}

// Delete stages the deletion of the record's row
func (s *Session) Delete(model string, record types.Record) error {
	sch, err := s.registry.Get(model)
	if err != nil {
		return err
	}
	if _, err := identifier(sch, record); err != nil {
		return err
	}

	s.pending = append(s.pending, pendingOp{kind: opDelete, schema: sch, record: record})
	return nil
}

// Flush executes staged writes in order inside the session transaction,
// beginning one if needed. On failure the transaction is rolled back,
// staged writes are dropped and the driver error is returned unwrapped
// so that it can be classified.
func (s *Session) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.Begin(ctx); err != nil {
		return err
	}

	ops := s.pending
	s.pending = nil
	for _, op := range ops {
		var err error
		switch op.kind {
		case opInsert:
			err = s.insert(ctx, op.schema, op.record)
		case opUpdate:
			err = s.update(ctx, op.schema, op.record)
		case opDelete:
			err = s.delete(ctx, op.schema, op.record)
		}
		if err != nil {
			_ = s.Rollback()
			return err
		}
	}
	return nil
}

// Commit flushes staged writes and commits the transaction
func (s *Session) Commit(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Rollback discards staged writes and rolls back an open transaction
func (s *Session) Rollback() error {
	s.pending = nil
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// Close ends the session, rolling back anything not committed
func (s *Session) Close() error {
	return s.Rollback()
}

// Get loads one row by identifier. A missing row yields (nil, nil).
func (s *Session) Get(ctx context.Context, model string, id any) (types.Record, error) {
	sch, err := s.registry.Get(model)
	if err != nil {
		return nil, err
	}
	return s.selectByID(ctx, sch, id)
}

// Refresh reloads the scalar columns of record from storage
func (s *Session) Refresh(ctx context.Context, model string, record types.Record) error {
	sch, err := s.registry.Get(model)
	if err != nil {
		return err
	}
	id, err := identifier(sch, record)
	if err != nil {
		return err
	}

	fresh, err := s.selectByID(ctx, sch, id)
	if err != nil {
		return err
	}
	if fresh == nil {
		return fmt.Errorf("%s %v: %w", model, id, ErrNotFound)
	}
	for k, v := range fresh {
		record[k] = v
	}
	return nil
}

func (s *Session) selectByID(ctx context.Context, sch *schema.Schema, id any) (types.Record, error) {
	pk, err := sch.GetPrimaryKey()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		s.columnList(sch), s.db.Quote(sch.TableName), s.db.Quote(pk.Name))
	rows, err := s.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *Session) insert(ctx context.Context, sch *schema.Schema, record types.Record) error {
	var cols []string
	var args []any
	for _, f := range sch.Fields {
		if v, ok := record[f.Name]; ok {
			cols = append(cols, s.db.Quote(f.Name))
			args = append(args, v)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.db.Quote(sch.TableName), strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	_, err := s.Exec(ctx, query, args...)
	return err
}

func (s *Session) update(ctx context.Context, sch *schema.Schema, record types.Record) error {
	pk, err := sch.GetPrimaryKey()
	if err != nil {
		return err
	}

	var sets []string
	var args []any
	for _, f := range sch.Fields {
		if f.PrimaryKey || f.Name == schema.CreatedAtField {
			continue
		}
		if v, ok := record[f.Name]; ok {
			sets = append(sets, s.db.Quote(f.Name)+" = ?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, record[pk.Name])

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		s.db.Quote(sch.TableName), strings.Join(sets, ", "), s.db.Quote(pk.Name))
	_, err = s.Exec(ctx, query, args...)
	return err
}

func (s *Session) delete(ctx context.Context, sch *schema.Schema, record types.Record) error {
	pk, err := sch.GetPrimaryKey()
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.db.Quote(sch.TableName), s.db.Quote(pk.Name))
	_, err = s.Exec(ctx, query, record[pk.Name])
	return err
}

func (s *Session) columnList(sch *schema.Schema) string {
	cols := make([]string, len(sch.Fields))
	for i, f := range sch.Fields {
		cols[i] = s.db.Quote(f.Name)
	}
	return strings.Join(cols, ", ")
}

func identifier(sch *schema.Schema, record types.Record) (any, error) {
	pk, err := sch.GetPrimaryKey()
	if err != nil {
		return nil, err
	}
	id := record[pk.Name]
	if id == nil {
		return nil, fmt.Errorf("%s: record has no %s", sch.Name, pk.Name)
	}
	return id, nil
}

// checkColumns rejects keys that are neither columns nor relationship fields
func checkColumns(sch *schema.Schema, record types.Record) error {
	for k := range record {
		if !sch.HasField(k) && !sch.HasRelation(k) {
			return fmt.Errorf("%s has no field %s", sch.Name, k)
		}
	}
	return nil
}
