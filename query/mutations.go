package query

import (
	"context"

	"github.com/rediwo/refdata/integrity"
	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

// The Try helpers run one session step and pass any failure through the
// integrity classifier. An optional table overrides the default policy:
// integrity.DefaultTable for writes, integrity.DeleteTable for deletes.

func tableOr(tables []integrity.Table, def integrity.Table) integrity.Table {
	if len(tables) > 0 {
		return tables[0]
	}
	return def
}

func TryAdd(s *session.Session, model string, record types.Record, tables ...integrity.Table) error {
	if err := s.Add(model, record); err != nil {
		return integrity.Classify(err, tableOr(tables, integrity.DefaultTable))
	}
	return nil
}

func TryCommit(ctx context.Context, s *session.Session, tables ...integrity.Table) error {
	if err := s.Commit(ctx); err != nil {
		return integrity.Classify(err, tableOr(tables, integrity.DefaultTable))
	}
	return nil
}

func TryRefresh(ctx context.Context, s *session.Session, model string, record types.Record, tables ...integrity.Table) error {
	if err := s.Refresh(ctx, model, record); err != nil {
		return integrity.Classify(err, tableOr(tables, integrity.DefaultTable))
	}
	return nil
}

func TryDelete(s *session.Session, model string, record types.Record, tables ...integrity.Table) error {
	if err := s.Delete(model, record); err != nil {
		return integrity.Classify(err, tableOr(tables, integrity.DeleteTable))
	}
	return nil
}

// TryAddCommitRefresh inserts record, commits, and reloads it so that
// storage-assigned values are visible to the caller
func TryAddCommitRefresh(ctx context.Context, s *session.Session, model string, record types.Record, tables ...integrity.Table) error {
	if err := TryAdd(s, model, record, tables...); err != nil {
		return err
	}
	if err := TryCommit(ctx, s, tables...); err != nil {
		return err
	}
	return TryRefresh(ctx, s, model, record, tables...)
}

// TryDeleteCommit deletes record and commits, classifying both steps with
// the delete table unless one is given
func TryDeleteCommit(ctx context.Context, s *session.Session, model string, record types.Record, tables ...integrity.Table) error {
	table := tableOr(tables, integrity.DeleteTable)
	if err := TryDelete(s, model, record, table); err != nil {
		return err
	}
	return TryCommit(ctx, s, table)
}
