package schema

import (
	"fmt"
)

// ValidateRelation validates a relation definition
func ValidateRelation(relation *Relation, currentModel, relatedModel *Schema) error {
	if relatedModel == nil {
		return fmt.Errorf("related model %s not found", relation.Model)
	}

	switch relation.Type {
	case RelationManyToOne:
		// Foreign key should be in current model
		if !currentModel.HasField(relation.ForeignKey) {
			return fmt.Errorf("foreign key field %s not found in model %s", relation.ForeignKey, currentModel.Name)
		}

	case RelationOneToMany:
		// Foreign key should be in related model
		if !relatedModel.HasField(relation.ForeignKey) {
			return fmt.Errorf("foreign key field %s not found in model %s", relation.ForeignKey, relatedModel.Name)
		}

	case RelationOneToOne:
		// Foreign key can be in either model
		if !currentModel.HasField(relation.ForeignKey) && !relatedModel.HasField(relation.ForeignKey) {
			return fmt.Errorf("foreign key field %s not found in either model", relation.ForeignKey)
		}

	case RelationManyToMany:
		return fmt.Errorf("many-to-many relations are not supported")

	default:
		return fmt.Errorf("unknown relation type: %s", relation.Type)
	}

	// Validate references field exists on the side that does not hold the key
	refModel := relatedModel
	if !OwnsForeignKey(relation, currentModel) {
		refModel = currentModel
	}
	if !refModel.HasField(relation.References) {
		return fmt.Errorf("references field %s not found in model %s", relation.References, refModel.Name)
	}

	return nil
}

// OwnsForeignKey reports whether the foreign key column lives on the
// owning model (manyToOne, or oneToOne declared from the holding side).
func OwnsForeignKey(relation *Relation, currentModel *Schema) bool {
	switch relation.Type {
	case RelationManyToOne:
		return true
	case RelationOneToOne:
		return currentModel.HasField(relation.ForeignKey)
	default:
		return false
	}
}

// JoinColumns returns the column on the owning table and the column on the
// related table that a join between the two must equate.
func JoinColumns(relation *Relation, currentModel *Schema) (currentCol, relatedCol string) {
	if OwnsForeignKey(relation, currentModel) {
		return relation.ForeignKey, relation.References
	}
	return relation.References, relation.ForeignKey
}

// BuildJoinCondition builds the SQL join condition for a relation
func BuildJoinCondition(relation *Relation, currentModel *Schema, quote func(string) string, currentTable, relatedTable string) string {
	currentCol, relatedCol := JoinColumns(relation, currentModel)
	return fmt.Sprintf("%s.%s = %s.%s",
		quote(currentTable), quote(currentCol), quote(relatedTable), quote(relatedCol))
}
