package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

// maxInParams bounds the number of keys bound into one IN list
const maxInParams = 500

// Fetcher loads entities with every relationship in their eager-load plan
// already materialised.
type Fetcher struct {
	planner *Planner
}

func NewFetcher(planner *Planner) *Fetcher {
	return &Fetcher{planner: planner}
}

func (f *Fetcher) Planner() *Planner {
	return f.planner
}

// FetchFull loads one entity of model by identifier. A missing entity is
// (nil, nil); deciding whether that is an error belongs to the caller.
func (f *Fetcher) FetchFull(ctx context.Context, s *session.Session, model string, id any) (types.Record, error) {
	plan, err := f.planner.PlanOf(model)
	if err != nil {
		return nil, err
	}
	sch, err := s.Registry().Get(model)
	if err != nil {
		return nil, err
	}
	pk, err := sch.GetPrimaryKey()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		columnList(s, sch, ""), s.DB().Quote(sch.TableName), s.DB().Quote(pk.Name))
	rows, err := s.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if err := hydrate(ctx, s, sch, rows, plan.Nodes); err != nil {
		return nil, err
	}
	return rows[0], nil
}

// hydrate loads every plan edge below records with one IN query per edge
// and attaches the results. Children are hydrated before they are attached.
func hydrate(ctx context.Context, s *session.Session, owner *schema.Schema, records []types.Record, nodes []*PlanNode) error {
	for _, node := range nodes {
		rel := node.Relationship
		ownerCol, targetCol := schema.JoinColumns(&rel.Relation, owner)

		for _, rec := range records {
			if rel.ToMany() {
				rec[node.Field] = []types.Record{}
			} else {
				rec[node.Field] = nil
			}
		}

		keys := distinctKeys(records, ownerCol)
		if len(keys) == 0 {
			continue
		}

		related, err := loadByKeys(ctx, s, rel.Target, targetCol, keys)
		if err != nil {
			return fmt.Errorf("failed to load %s.%s: %w", owner.Name, node.Field, err)
		}
		if err := hydrate(ctx, s, rel.Target, related, node.Children); err != nil {
			return err
		}

		byKey := make(map[string][]types.Record, len(related))
		for _, r := range related {
			k := keyOf(r[targetCol])
			byKey[k] = append(byKey[k], r)
		}

		for _, rec := range records {
			v := rec[ownerCol]
			if v == nil {
				continue
			}
			matches := byKey[keyOf(v)]
			if rel.ToMany() {
				rec[node.Field] = append([]types.Record{}, matches...)
			} else if len(matches) > 0 {
				rec[node.Field] = matches[0]
			}
		}
	}
	return nil
}

func loadByKeys(ctx context.Context, s *session.Session, target *schema.Schema, col string, keys []any) ([]types.Record, error) {
	pk, err := target.GetPrimaryKey()
	if err != nil {
		return nil, err
	}

	var out []types.Record
	for start := 0; start < len(keys); start += maxInParams {
		end := min(start+maxInParams, len(keys))
		chunk := keys[start:end]

		query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s) ORDER BY %s",
			columnList(s, target, ""), s.DB().Quote(target.TableName), s.DB().Quote(col),
			placeholders(len(chunk)), s.DB().Quote(pk.Name))
		rows, err := s.Query(ctx, query, chunk...)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func distinctKeys(records []types.Record, col string) []any {
	seen := make(map[string]bool, len(records))
	var keys []any
	for _, rec := range records {
		v := rec[col]
		if v == nil {
			continue
		}
		k := keyOf(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, v)
	}
	return keys
}

// keyOf normalises a column value for matching across queries; drivers
// disagree on whether integers come back as int64 or as strings.
func keyOf(v any) string {
	return fmt.Sprint(v)
}

// columnList returns the quoted scalar columns of sch, qualified by table
// when table is not empty
func columnList(s *session.Session, sch *schema.Schema, table string) string {
	cols := make([]string, len(sch.Fields))
	for i, f := range sch.Fields {
		if table != "" {
			cols[i] = s.DB().Quote(table) + "." + s.DB().Quote(f.Name)
		} else {
			cols[i] = s.DB().Quote(f.Name)
		}
	}
	return strings.Join(cols, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
