package query

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

// Sort orders a page by one column. The zero Direction is ascending.
type Sort struct {
	Field     string
	Direction types.Order
}

// Join adds another entity's table to the count and page queries so that
// filters may reference its columns as "Model.column". A nil On joins
// through the relationship declared between the two entity types.
type Join struct {
	Model string
	On    types.Condition
}

// PageRequest describes one page of a filtered, optionally joined and
// sorted listing. Page is 1-based.
type PageRequest struct {
	Page    int
	Size    int
	Filters []types.Condition
	Joins   []Join
	Sort    *Sort
}

// PageResult is one page of hydrated entities plus the total number of
// matching rows
type PageResult struct {
	Items []types.Record `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// FetchPage returns page req.Page of model. Validation and column
// resolution happen before any statement is issued.
func (f *Fetcher) FetchPage(ctx context.Context, s *session.Session, model string, req PageRequest) (*PageResult, error) {
	if req.Page < 1 {
		return nil, errPageTooSmall
	}
	if req.Size < 1 {
		return nil, errSizeTooSmall
	}

	plan, err := f.planner.PlanOf(model)
	if err != nil {
		return nil, err
	}
	sch, err := s.Registry().Get(model)
	if err != nil {
		return nil, err
	}

	b, err := newPageBuilder(s, sch, req)
	if err != nil {
		return nil, err
	}

	countSQL := "SELECT COUNT(*) FROM " + b.from + b.where
	pageSQL := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ? OFFSET ?",
		columnList(s, sch, sch.TableName), b.from, b.where, b.orderBy)
	// An offset past math.MaxInt lies beyond every row.
	beyond := req.Page-1 > math.MaxInt/req.Size
	var pageArgs []any
	if !beyond {
		pageArgs = append(append([]any(nil), b.args...), req.Size, (req.Page-1)*req.Size)
	}

	var total int64
	items := []types.Record{}
	count := func(ctx context.Context) error {
		n, err := s.QueryCount(ctx, countSQL, b.args...)
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", model, err)
		}
		total = n
		return nil
	}
	page := func(ctx context.Context) error {
		if beyond {
			return nil
		}
		rows, err := s.Query(ctx, pageSQL, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to select %s page: %w", model, err)
		}
		items = rows
		return nil
	}

	// A transaction is one connection; only pool reads can overlap.
	if s.InTransaction() {
		if err := count(ctx); err != nil {
			return nil, err
		}
		if err := page(ctx); err != nil {
			return nil, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return count(gctx) })
		g.Go(func() error { return page(gctx) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if err := hydrate(ctx, s, sch, items, plan.Nodes); err != nil {
		return nil, err
	}

	return &PageResult{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}

type pageBuilder struct {
	s       *session.Session
	root    *schema.Schema
	joined  map[string]*schema.Schema
	from    string
	where   string
	orderBy string
	args    []any
}

func newPageBuilder(s *session.Session, root *schema.Schema, req PageRequest) (*pageBuilder, error) {
	b := &pageBuilder{
		s:      s,
		root:   root,
		joined: map[string]*schema.Schema{root.Name: root},
	}
	cctx := &types.ConditionContext{Resolve: b.resolve}

	from := []string{s.DB().Quote(root.TableName)}
	for _, j := range req.Joins {
		clause, args, err := b.join(cctx, j)
		if err != nil {
			return nil, err
		}
		from = append(from, clause)
		b.args = append(b.args, args...)
	}
	b.from = strings.Join(from, " ")

	if len(req.Filters) > 0 {
		clause, args, err := types.And(req.Filters...).ToSQL(cctx)
		if err != nil {
			return nil, err
		}
		if clause != "" {
			b.where = " WHERE " + clause
			b.args = append(b.args, args...)
		}
	}

	pk, err := root.GetPrimaryKey()
	if err != nil {
		return nil, err
	}
	tiebreak := b.column(root, pk.Name) + " ASC"
	if req.Sort == nil {
		b.orderBy = tiebreak
		return b, nil
	}
	if !root.HasField(req.Sort.Field) {
		return nil, &ConfigurationError{Message: sortColumnNotFound}
	}
	b.orderBy = b.column(root, req.Sort.Field) + " " + req.Sort.Direction.String()
	if req.Sort.Field != pk.Name {
		b.orderBy += ", " + tiebreak
	}
	return b, nil
}

func (b *pageBuilder) join(cctx *types.ConditionContext, j Join) (string, []any, error) {
	target, err := b.s.Registry().Get(j.Model)
	if err != nil {
		return "", nil, &ConfigurationError{Message: fmt.Sprintf("Join model %s not registered.", j.Model)}
	}
	if _, dup := b.joined[target.Name]; dup {
		return "", nil, &ConfigurationError{Message: fmt.Sprintf("Model %s joined twice.", j.Model)}
	}
	b.joined[target.Name] = target

	prefix := "JOIN " + b.s.DB().Quote(target.TableName) + " ON "
	if j.On != nil {
		on, args, err := j.On.ToSQL(cctx)
		if err != nil {
			return "", nil, err
		}
		return prefix + on, args, nil
	}

	// relations declared on the root win over inverse ones
	var candidates []string
	for _, name := range b.root.GetRelationsToModel(target.Name) {
		rel := b.root.Relations[name]
		candidates = append(candidates, schema.BuildJoinCondition(&rel, b.root, b.s.DB().Quote, b.root.TableName, target.TableName))
	}
	if len(candidates) == 0 {
		for _, name := range target.GetRelationsToModel(b.root.Name) {
			rel := target.Relations[name]
			candidates = append(candidates, schema.BuildJoinCondition(&rel, target, b.s.DB().Quote, target.TableName, b.root.TableName))
		}
	}
	if len(candidates) != 1 {
		return "", nil, &ConfigurationError{
			Message: fmt.Sprintf("Join from %s to %s needs an explicit condition.", b.root.Name, target.Name),
		}
	}
	return prefix + candidates[0], nil, nil
}

// resolve maps "column" to a root column and "Model.column" to a column of
// the root or a joined entity
func (b *pageBuilder) resolve(field string) (string, error) {
	sch := b.root
	col := field
	if model, c, ok := strings.Cut(field, "."); ok {
		joined, found := b.joined[model]
		if !found {
			return "", &ConfigurationError{Message: fmt.Sprintf("Model %s is not part of the query.", model)}
		}
		sch, col = joined, c
	}
	if !sch.HasField(col) {
		return "", &ConfigurationError{Message: fmt.Sprintf("Filter column %s not found on model.", field)}
	}
	return b.column(sch, col), nil
}

func (b *pageBuilder) column(sch *schema.Schema, col string) string {
	return b.s.DB().Quote(sch.TableName) + "." + b.s.DB().Quote(col)
}
