// Package migration creates the tables of every registered entity type.
package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rediwo/refdata/database"
	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/types"
)

// Migrator creates missing tables and indexes. Existing tables are left
// untouched; column changes are out of its reach.
type Migrator struct {
	db       *database.DB
	registry *schema.Registry
}

func NewMigrator(db *database.DB, registry *schema.Registry) *Migrator {
	return &Migrator{db: db, registry: registry}
}

// Plan returns the statements Migrate would run, in execution order
func (m *Migrator) Plan() ([]string, error) {
	order, err := schema.SortByDependency(m.registry.All())
	if err != nil {
		return nil, err
	}

	var statements []string
	for _, name := range order {
		s, err := m.registry.Get(name)
		if err != nil {
			return nil, err
		}
		create, err := m.GenerateCreateTableSQL(s)
		if err != nil {
			return nil, err
		}
		statements = append(statements, create)
		statements = append(statements, m.GenerateCreateIndexSQL(s)...)
	}
	return statements, nil
}

// Migrate runs every planned statement
func (m *Migrator) Migrate(ctx context.Context) error {
	statements, err := m.Plan()
	if err != nil {
		return fmt.Errorf("failed to plan migration: %w", err)
	}

	log := m.db.Logger()
	for _, stmt := range statements {
		start := time.Now()
		_, err := m.db.SQL().ExecContext(ctx, stmt)
		log.LogSQL(stmt, nil, time.Since(start))
		if err != nil {
			return fmt.Errorf("failed to apply migration: %s: %w", stmt, err)
		}
	}
	log.Info("Schema up to date (%d tables)", len(m.registry.Names()))
	return nil
}

// GenerateCreateTableSQL renders CREATE TABLE IF NOT EXISTS for a schema,
// including foreign keys for the relations the schema owns.
func (m *Migrator) GenerateCreateTableSQL(s *schema.Schema) (string, error) {
	caps := m.db.Capabilities()
	quote := caps.QuoteIdentifier

	var defs []string
	for _, field := range s.Fields {
		parts := []string{quote(field.Name), caps.ColumnType(field)}
		if field.PrimaryKey {
			parts = append(parts, "PRIMARY KEY")
		} else if !field.Nullable {
			parts = append(parts, "NOT NULL")
		}
		if field.Unique && !field.PrimaryKey {
			parts = append(parts, "UNIQUE")
		}
		defs = append(defs, strings.Join(parts, " "))
	}

	if caps.SupportsForeignKeys() {
		for _, name := range s.RelationNames() {
			rel := s.Relations[name]
			if !schema.OwnsForeignKey(&rel, s) {
				continue
			}
			target, err := m.registry.Get(rel.Model)
			if err != nil {
				return "", fmt.Errorf("relation %s.%s: %w", s.Name, name, err)
			}
			fk := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				quote(rel.ForeignKey), quote(target.TableName), quote(rel.References))
			if rel.OnDelete != "" {
				fk += " ON DELETE " + strings.ToUpper(rel.OnDelete)
			}
			defs = append(defs, fk)
		}
	}

	if caps.GetDriverType() == types.DriverMySQL {
		for _, idx := range indexes(s) {
			kind := "INDEX"
			if idx.Unique {
				kind = "UNIQUE INDEX"
			}
			defs = append(defs, fmt.Sprintf("%s %s (%s)", kind, quote(idx.Name), quoteAll(quote, idx.Fields)))
		}
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quote(s.TableName), strings.Join(defs, ",\n  ")), nil
}

// GenerateCreateIndexSQL renders the index statements of a schema. MySQL
// has no IF NOT EXISTS for indexes, so they are declared inline there.
func (m *Migrator) GenerateCreateIndexSQL(s *schema.Schema) []string {
	caps := m.db.Capabilities()
	if caps.GetDriverType() == types.DriverMySQL {
		return nil
	}

	var statements []string
	for _, idx := range indexes(s) {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		statements = append(statements, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
			unique, caps.QuoteIdentifier(idx.Name), caps.QuoteIdentifier(s.TableName),
			quoteAll(caps.QuoteIdentifier, idx.Fields)))
	}
	return statements
}

// indexes merges declared indexes with single-column Index fields
func indexes(s *schema.Schema) []schema.Index {
	all := append([]schema.Index(nil), s.Indexes...)
	for _, f := range s.Fields {
		if f.Index {
			all = append(all, schema.Index{Fields: []string{f.Name}})
		}
	}
	for i := range all {
		if all[i].Name == "" {
			all[i].Name = fmt.Sprintf("idx_%s_%s", s.TableName, strings.Join(all[i].Fields, "_"))
		}
	}
	return all
}

func quoteAll(quote func(string) string, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}
