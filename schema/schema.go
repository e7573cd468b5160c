package schema

import (
	"fmt"
	"sort"

	"github.com/rediwo/refdata/utils"
)

type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeText     FieldType = "text"
	FieldTypeUUID     FieldType = "uuid"
	FieldTypeInt      FieldType = "int"
	FieldTypeInt64    FieldType = "int64"
	FieldTypeFloat    FieldType = "float"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDateTime FieldType = "datetime"
)

// Standard column names carried by every entity type
const (
	IDField        = "id"
	CreatedAtField = "created_at"
	UpdatedAtField = "updated_at"
)

// Field is a scalar column of an entity type. Name is the column name.
type Field struct {
	Name       string
	Type       FieldType
	PrimaryKey bool
	Nullable   bool
	Unique     bool
	Index      bool
	Size       int // VARCHAR length, 0 means the dialect default
}

type Relation struct {
	Type       RelationType
	Model      string
	ForeignKey string
	References string
	OnDelete   string
}

type RelationType string

const (
	RelationOneToOne   RelationType = "oneToOne"
	RelationOneToMany  RelationType = "oneToMany"
	RelationManyToOne  RelationType = "manyToOne"
	RelationManyToMany RelationType = "manyToMany"
)

// IsToMany reports whether the relation yields a collection
func (t RelationType) IsToMany() bool {
	return t == RelationOneToMany || t == RelationManyToMany
}

type Schema struct {
	Name      string
	TableName string
	Fields    []Field
	Relations map[string]Relation
	Indexes   []Index
}

type Index struct {
	Name   string
	Fields []string
	Unique bool
}

func New(name string) *Schema {
	return &Schema{
		Name:      name,
		TableName: ModelNameToTableName(name),
		Fields:    []Field{},
		Relations: make(map[string]Relation),
		Indexes:   []Index{},
	}
}

// NewEntity creates a schema that already carries the identifier and
// the two timestamps every entity type needs.
func NewEntity(name string) *Schema {
	return New(name).
		AddField(NewField(IDField).UUID().PrimaryKey().Build()).
		AddField(NewField(CreatedAtField).DateTime().Build()).
		AddField(NewField(UpdatedAtField).DateTime().Build())
}

// ModelNameToTableName converts model name to default table name (pluralized, snake_case)
func ModelNameToTableName(modelName string) string {
	snakeCase := utils.ToSnakeCase(modelName)
	return utils.Pluralize(snakeCase)
}

func (s *Schema) WithTableName(name string) *Schema {
	s.TableName = name
	return s
}

func (s *Schema) AddField(field Field) *Schema {
	s.Fields = append(s.Fields, field)
	return s
}

func (s *Schema) AddRelation(name string, relation Relation) *Schema {
	if relation.References == "" {
		relation.References = IDField
	}
	s.Relations[name] = relation
	return s
}

func (s *Schema) AddIndex(index Index) *Schema {
	s.Indexes = append(s.Indexes, index)
	return s
}

func (s *Schema) GetField(name string) (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("field %s not found", name)
}

// HasField reports whether name is a scalar column of the schema
func (s *Schema) HasField(name string) bool {
	_, err := s.GetField(name)
	return err == nil
}

func (s *Schema) GetPrimaryKey() (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].PrimaryKey {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("no primary key found")
}

// ColumnNames returns the column names in declaration order
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// RelationNames returns the relationship field names in lexical order
func (s *Schema) RelationNames() []string {
	names := make([]string, 0, len(s.Relations))
	for name := range s.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if s.TableName == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema must have at least one field")
	}

	seen := make(map[string]bool, len(s.Fields))
	primaryKeys := 0
	for _, field := range s.Fields {
		if seen[field.Name] {
			return fmt.Errorf("duplicate field %s", field.Name)
		}
		seen[field.Name] = true
		if field.PrimaryKey {
			primaryKeys++
		}
	}

	switch {
	case primaryKeys == 0:
		return fmt.Errorf("schema must have a primary key")
	case primaryKeys > 1:
		return fmt.Errorf("schema can only have one single-field primary key")
	}

	for name := range s.Relations {
		if seen[name] {
			return fmt.Errorf("relation %s collides with a field of the same name", name)
		}
	}

	return nil
}

// HasRelation checks if a relation exists
func (s *Schema) HasRelation(relationName string) bool {
	_, exists := s.Relations[relationName]
	return exists
}

// GetRelation returns a relation by name
func (s *Schema) GetRelation(relationName string) (Relation, error) {
	relation, exists := s.Relations[relationName]
	if !exists {
		return Relation{}, fmt.Errorf("relation %s not found", relationName)
	}
	return relation, nil
}

// GetRelationsToModel returns the names of all relations that point to the
// specified model, in lexical order
func (s *Schema) GetRelationsToModel(modelName string) []string {
	var names []string
	for _, name := range s.RelationNames() {
		if s.Relations[name].Model == modelName {
			names = append(names, name)
		}
	}
	return names
}
