package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/service"
)

// SchemaGenerator builds the read-only GraphQL schema over the asset service
type SchemaGenerator struct {
	service     *service.Service
	pageSize    int
	objectTypes map[string]*graphql.Object
}

// NewSchemaGenerator creates a new schema generator. List queries without a
// size argument use pageSize, or DefaultPageSize when pageSize is not positive.
func NewSchemaGenerator(svc *service.Service, pageSize int) *SchemaGenerator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &SchemaGenerator{
		service:     svc,
		pageSize:    pageSize,
		objectTypes: make(map[string]*graphql.Object),
	}
}

// GetObjectTypes returns the object types for debugging
func (g *SchemaGenerator) GetObjectTypes() map[string]*graphql.Object {
	return g.objectTypes
}

// Generate creates the complete GraphQL schema
func (g *SchemaGenerator) Generate() (*graphql.Schema, error) {
	if g.service == nil {
		return nil, errors.New("graphql schema needs a service")
	}

	asset := g.assetType()
	pair := g.assetPairType(asset)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: g.queryType(asset, pair),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}
	return &schema, nil
}

func (g *SchemaGenerator) assetType() *graphql.Object {
	field := func(t graphql.Output, get func(*models.Asset) any) *graphql.Field {
		return &graphql.Field{
			Type: t,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if a, ok := p.Source.(*models.Asset); ok && a != nil {
					return get(a), nil
				}
				return nil, nil
			},
		}
	}

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:        models.AssetModel,
		Description: "A tradable asset",
		Fields: graphql.Fields{
			"id":        field(graphql.NewNonNull(graphql.ID), func(a *models.Asset) any { return a.ID }),
			"name":      field(graphql.NewNonNull(graphql.String), func(a *models.Asset) any { return a.Name }),
			"shortName": field(graphql.NewNonNull(graphql.String), func(a *models.Asset) any { return a.ShortName }),
			"type":      field(graphql.NewNonNull(graphql.String), func(a *models.Asset) any { return a.Type }),
			"createdAt": field(graphql.DateTime, func(a *models.Asset) any { return a.CreatedAt }),
			"updatedAt": field(graphql.DateTime, func(a *models.Asset) any { return a.UpdatedAt }),
		},
	})
	g.objectTypes[models.AssetModel] = obj
	return obj
}

func (g *SchemaGenerator) assetPairType(asset *graphql.Object) *graphql.Object {
	field := func(t graphql.Output, get func(*models.AssetPair) any) *graphql.Field {
		return &graphql.Field{
			Type: t,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if pair, ok := p.Source.(*models.AssetPair); ok && pair != nil {
					return get(pair), nil
				}
				return nil, nil
			},
		}
	}

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:        models.AssetPairModel,
		Description: "A base/quote combination of two assets",
		Fields: graphql.Fields{
			"id":        field(graphql.NewNonNull(graphql.ID), func(p *models.AssetPair) any { return p.ID }),
			"baseId":    field(graphql.NewNonNull(graphql.ID), func(p *models.AssetPair) any { return p.BaseID }),
			"quoteId":   field(graphql.NewNonNull(graphql.ID), func(p *models.AssetPair) any { return p.QuoteID }),
			"base":      field(asset, func(p *models.AssetPair) any { return p.Base }),
			"quote":     field(asset, func(p *models.AssetPair) any { return p.Quote }),
			"createdAt": field(graphql.DateTime, func(p *models.AssetPair) any { return p.CreatedAt }),
			"updatedAt": field(graphql.DateTime, func(p *models.AssetPair) any { return p.UpdatedAt }),
		},
	})
	g.objectTypes[models.AssetPairModel] = obj
	return obj
}

// pageType wraps item in the items/total/page/size envelope
func (g *SchemaGenerator) pageType(name string, item *graphql.Object) *graphql.Object {
	obj := graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"items": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(item)))},
			"total": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"page":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"size":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
	g.objectTypes[name] = obj
	return obj
}

func (g *SchemaGenerator) queryType(asset, pair *graphql.Object) *graphql.Object {
	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
	listArgs := func(withShortName bool) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{
			"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
			"size": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: g.pageSize},
			"sort": &graphql.ArgumentConfig{Type: graphql.String},
			"dir":  &graphql.ArgumentConfig{Type: graphql.String},
		}
		if withShortName {
			args["shortName"] = &graphql.ArgumentConfig{Type: graphql.String}
		}
		return args
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"asset": &graphql.Field{
				Type:    asset,
				Args:    idArgs,
				Resolve: g.resolveAsset,
			},
			"assets": &graphql.Field{
				Type:    graphql.NewNonNull(g.pageType("AssetPage", asset)),
				Args:    listArgs(true),
				Resolve: g.resolveAssets,
			},
			"assetPair": &graphql.Field{
				Type:    pair,
				Args:    idArgs,
				Resolve: g.resolveAssetPair,
			},
			"assetPairs": &graphql.Field{
				Type:    graphql.NewNonNull(g.pageType("AssetPairPage", pair)),
				Args:    listArgs(false),
				Resolve: g.resolveAssetPairs,
			},
		},
	})
}

// New builds the schema for svc and wraps it in a Handler
func New(svc *service.Service, pageSize int) (*Handler, error) {
	schema, err := NewSchemaGenerator(svc, pageSize).Generate()
	if err != nil {
		return nil, err
	}
	return NewHandler(schema), nil
}
