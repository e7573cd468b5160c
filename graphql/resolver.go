package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/rediwo/refdata/service"
)

// DefaultPageSize applies when no page size is configured
const DefaultPageSize = 50

// resolveAsset returns null for an unknown id
func (g *SchemaGenerator) resolveAsset(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	asset, err := g.service.RetrieveAsset(p.Context, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (g *SchemaGenerator) resolveAssets(p graphql.ResolveParams) (any, error) {
	page, err := g.service.RetrieveAssets(p.Context, g.listOptions(p.Args))
	if err != nil {
		return nil, err
	}
	return pageMap(page.Items, page.Total, page.Page, page.Size), nil
}

func (g *SchemaGenerator) resolveAssetPair(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	pair, err := g.service.RetrieveAssetPair(p.Context, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (g *SchemaGenerator) resolveAssetPairs(p graphql.ResolveParams) (any, error) {
	page, err := g.service.RetrieveAssetPairs(p.Context, g.listOptions(p.Args))
	if err != nil {
		return nil, err
	}
	return pageMap(page.Items, page.Total, page.Page, page.Size), nil
}

func (g *SchemaGenerator) listOptions(args map[string]any) service.ListOptions {
	opts := service.ListOptions{Page: 1, Size: g.pageSize}
	if v, ok := args["page"].(int); ok {
		opts.Page = v
	}
	if v, ok := args["size"].(int); ok {
		opts.Size = v
	}
	if v, ok := args["shortName"].(string); ok {
		opts.ShortName = v
	}
	if v, ok := args["sort"].(string); ok {
		opts.Sort = v
	}
	if v, ok := args["dir"].(string); ok {
		opts.Direction = v
	}
	return opts
}

func pageMap[T any](items []T, total int64, page, size int) map[string]any {
	return map[string]any{
		"items": items,
		"total": int(total),
		"page":  page,
		"size":  size,
	}
}

func isNotFound(err error) bool {
	var nf *service.NotFoundError
	return errors.As(err, &nf)
}
