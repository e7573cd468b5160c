package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairRegistry(t *testing.T) *Registry {
	t.Helper()

	asset := NewEntity("Asset").
		AddField(NewField("short_name").Unique().Build()).
		AddRelation("base_pairs", Relation{Type: RelationOneToMany, Model: "AssetPair", ForeignKey: "base_id"})
	pair := NewEntity("AssetPair").
		AddField(NewField("base_id").UUID().Build()).
		AddField(NewField("quote_id").UUID().Build()).
		AddRelation("base", Relation{Type: RelationManyToOne, Model: "Asset", ForeignKey: "base_id"}).
		AddRelation("quote", Relation{Type: RelationManyToOne, Model: "Asset", ForeignKey: "quote_id"})

	reg := NewRegistry()
	require.NoError(t, reg.Register(asset, pair))
	require.NoError(t, reg.Validate())
	return reg
}

func TestRegistryGet(t *testing.T) {
	reg := pairRegistry(t)

	s, err := reg.Get("Asset")
	require.NoError(t, err)
	assert.Equal(t, "assets", s.TableName)

	_, err = reg.Get("Order")
	assert.True(t, errors.Is(err, ErrUnknownModel))

	assert.Equal(t, []string{"Asset", "AssetPair"}, reg.Names())
	assert.Len(t, reg.All(), 2)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewEntity("Asset")))

	err := reg.Register(NewEntity("Asset"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Panics(t, func() { reg.MustRegister(New("Broken")) })
}

func TestRelationshipsOf(t *testing.T) {
	reg := pairRegistry(t)

	rels, err := reg.RelationshipsOf("AssetPair")
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "Asset", rels["base"].Target.Name)
	assert.Equal(t, "Asset", rels["quote"].Target.Name)
	assert.False(t, rels["base"].ToMany())

	rels, err = reg.RelationshipsOf("Asset")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.True(t, rels["base_pairs"].ToMany())

	// scalar fields are never reported
	_, hasField := rels["short_name"]
	assert.False(t, hasField)

	_, err = reg.RelationshipsOf("Order")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestRegistryValidateUnresolved(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(
		NewEntity("AssetPair").
			AddField(NewField("base_id").UUID().Build()).
			AddRelation("base", Relation{Type: RelationManyToOne, Model: "Asset", ForeignKey: "base_id"}),
	))

	err := reg.Validate()
	var unresolved *UnresolvedRelationError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "AssetPair", unresolved.Model)
	assert.Equal(t, "base", unresolved.Relation)
	assert.Equal(t, "Asset", unresolved.Target)

	_, err = reg.RelationshipsOf("AssetPair")
	assert.ErrorAs(t, err, &unresolved)
}

func TestRegistryValidateBadForeignKey(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(
		NewEntity("Asset"),
		NewEntity("AssetPair").
			AddRelation("base", Relation{Type: RelationManyToOne, Model: "Asset", ForeignKey: "base_id"}),
	))

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign key field base_id not found")
}
