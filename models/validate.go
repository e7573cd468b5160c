package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/types"
)

// ValidationError reports input that does not fit the entity shape
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

// Validate checks a record about to be inserted: every non-nullable column
// other than the generated ones must be present, and values must fit their
// column types.
func Validate(sch *schema.Schema, data types.Record) error {
	for _, field := range sch.Fields {
		if field.Nullable || generated(field.Name) {
			continue
		}
		if _, exists := data[field.Name]; !exists {
			return &ValidationError{Field: field.Name, Message: "required field is missing"}
		}
	}

	for key, value := range data {
		field, err := sch.GetField(key)
		if err != nil {
			return &ValidationError{Field: key, Message: "unknown field"}
		}
		if err := validateFieldType(field, value); err != nil {
			return &ValidationError{Field: key, Message: err.Error()}
		}
	}
	return nil
}

func generated(name string) bool {
	return name == schema.IDField || name == schema.CreatedAtField || name == schema.UpdatedAtField
}

func validateFieldType(field *schema.Field, value any) error {
	if value == nil {
		if !field.Nullable {
			return fmt.Errorf("cannot be null")
		}
		return nil
	}

	switch field.Type {
	case schema.FieldTypeString, schema.FieldTypeText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string")
		}
	case schema.FieldTypeUUID:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected uuid")
		}
		if _, err := uuid.Parse(s); err != nil {
			return fmt.Errorf("invalid uuid")
		}
	case schema.FieldTypeInt, schema.FieldTypeInt64:
		switch value.(type) {
		case int, int32, int64, float64:
		default:
			return fmt.Errorf("expected integer")
		}
	case schema.FieldTypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean")
		}
	}
	return nil
}
