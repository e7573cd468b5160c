package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/types"
)

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{AssetModel, AssetPairModel}, reg.Names())

	asset, err := reg.Get(AssetModel)
	require.NoError(t, err)
	assert.Equal(t, "assets", asset.TableName)
	field, err := asset.GetField("short_name")
	require.NoError(t, err)
	assert.True(t, field.Unique)

	rels, err := reg.RelationshipsOf(AssetPairModel)
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, AssetModel, rels["base"].Target.Name)
	assert.Equal(t, "quote_id", rels["quote"].Relation.ForeignKey)
	assert.False(t, rels["base"].ToMany())

	pair, err := reg.Get(AssetPairModel)
	require.NoError(t, err)
	assert.Equal(t, "asset_pairs", pair.TableName)
}

func TestRegisterTwiceFails(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Error(t, Register(reg))
}

func TestAssetPairFromRecord(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := types.Record{
		"id":         "p1",
		"base_id":    "a1",
		"quote_id":   []byte("a2"),
		"created_at": created,
		"updated_at": "2024-03-01T12:00:00Z",
		"base":       types.Record{"id": "a1", "short_name": "BTC", "created_at": created},
		"quote":      types.Record{"id": "a2", "short_name": "USD"},
	}

	pair, err := AssetPairFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.QuoteID)
	assert.Equal(t, created, pair.CreatedAt)
	assert.Equal(t, created, pair.UpdatedAt)
	require.NotNil(t, pair.Base)
	assert.Equal(t, "BTC", pair.Base.ShortName)
	assert.Equal(t, "USD", pair.Quote.ShortName)

	pair, err = AssetPairFromRecord(types.Record{"id": "p2", "base": nil})
	require.NoError(t, err)
	assert.Nil(t, pair.Base)

	_, err = AssetPairFromRecord(types.Record{"created_at": 12})
	assert.Error(t, err)

	none, err := AssetFromRecord(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAssetsFromRecords(t *testing.T) {
	assets, err := AssetsFromRecords([]types.Record{})
	require.NoError(t, err)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestValidate(t *testing.T) {
	asset := AssetSchema()
	pair := AssetPairSchema()

	assert.NoError(t, Validate(asset, AssetCreate{Name: "Bitcoin", ShortName: "BTC", Type: "crypto"}.Record()))
	assert.NoError(t, Validate(pair, AssetPairCreate{BaseID: uuid.NewString(), QuoteID: uuid.NewString()}.Record()))

	tests := []struct {
		name  string
		sch   string
		data  types.Record
		field string
	}{
		{"missing", AssetModel, types.Record{"name": "Bitcoin", "type": "crypto"}, "short_name"},
		{"null", AssetModel, types.Record{"name": nil, "short_name": "BTC", "type": "crypto"}, "name"},
		{"wrong type", AssetModel, types.Record{"name": 1, "short_name": "BTC", "type": "crypto"}, "name"},
		{"unknown", AssetModel, types.Record{"name": "x", "short_name": "BTC", "type": "crypto", "ticker": "x"}, "ticker"},
		{"bad uuid", AssetPairModel, types.Record{"base_id": "nope", "quote_id": uuid.NewString()}, "base_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch := asset
			if tt.sch == AssetPairModel {
				sch = pair
			}
			err := Validate(sch, tt.data)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
