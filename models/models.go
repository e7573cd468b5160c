// Package models declares the reference-data entity types and their typed
// views.
package models

import (
	"fmt"

	"github.com/rediwo/refdata/schema"
)

const (
	AssetModel     = "Asset"
	AssetPairModel = "AssetPair"
)

func AssetSchema() *schema.Schema {
	return schema.NewEntity(AssetModel).
		AddField(schema.NewField("name").String().Build()).
		AddField(schema.NewField("short_name").String().Unique().Build()).
		AddField(schema.NewField("type").String().Build())
}

func AssetPairSchema() *schema.Schema {
	return schema.NewEntity(AssetPairModel).
		AddField(schema.NewField("base_id").UUID().Index().Build()).
		AddField(schema.NewField("quote_id").UUID().Index().Build()).
		AddRelation("base", schema.Relation{
			Type:       schema.RelationManyToOne,
			Model:      AssetModel,
			ForeignKey: "base_id",
		}).
		AddRelation("quote", schema.Relation{
			Type:       schema.RelationManyToOne,
			Model:      AssetModel,
			ForeignKey: "quote_id",
		})
}

// Register adds every entity type to reg and checks that all declared
// relationships resolve. A failure here means the process must not serve.
func Register(reg *schema.Registry) error {
	if err := reg.Register(AssetSchema(), AssetPairSchema()); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("invalid entity declarations: %w", err)
	}
	return nil
}

// NewRegistry returns a registry holding every entity type
func NewRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
