package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rediwo/refdata/integrity"
	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/query"
	"github.com/rediwo/refdata/service"
)

const defaultPageSize = 50

// addToolWithLogging wraps mcp.AddTool to add logging for registration and invocation
func addToolWithLogging[In, Out any](s *SDKServer, tool *mcp.Tool, handler func(context.Context, *mcp.ServerSession, *mcp.CallToolParamsFor[In]) (*mcp.CallToolResultFor[Out], error)) {
	s.logger.Debug("Registering tool: %s - %s", tool.Name, tool.Description)

	wrappedHandler := func(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[In]) (*mcp.CallToolResultFor[Out], error) {
		startTime := time.Now()
		s.logger.Info("Tool invoked: %s", tool.Name)

		if s.logger.GetLevel() >= logger.LogLevelDebug {
			paramsJSON, _ := json.Marshal(params.Arguments)
			s.logger.Debug("  Parameters: %s", string(paramsJSON))
		}

		result, err := handler(ctx, session, params)

		duration := time.Since(startTime)
		if err != nil {
			s.logger.Error("Tool %s failed after %v: %v", tool.Name, duration, err)
		} else {
			s.logger.Debug("Tool %s completed in %v", tool.Name, duration)
		}
		return result, err
	}

	mcp.AddTool[In, Out](s.mcpServer, tool, wrappedHandler)
}

type AssetGetParams struct {
	ID string `json:"id" jsonschema:"Asset identifier (UUID)"`
}

type AssetListParams struct {
	Page      *int   `json:"page,omitempty" jsonschema:"Page number starting at 1"`
	Size      *int   `json:"size,omitempty" jsonschema:"Page size"`
	ShortName string `json:"short_name,omitempty" jsonschema:"Only assets with this short name"`
	Sort      string `json:"sort,omitempty" jsonschema:"Sort field"`
	Dir       string `json:"dir,omitempty" jsonschema:"Sort direction, asc or desc"`
}

type AssetPairGetParams struct {
	ID string `json:"id" jsonschema:"Asset pair identifier (UUID)"`
}

type AssetPairListParams struct {
	Page *int   `json:"page,omitempty" jsonschema:"Page number starting at 1"`
	Size *int   `json:"size,omitempty" jsonschema:"Page size"`
	Sort string `json:"sort,omitempty" jsonschema:"Sort field"`
	Dir  string `json:"dir,omitempty" jsonschema:"Sort direction, asc or desc"`
}

func (s *SDKServer) registerTools() {
	assetGetSchema, _ := jsonschema.For[AssetGetParams]()
	addToolWithLogging[AssetGetParams, any](s, &mcp.Tool{
		Name:        "asset.get",
		Description: "Fetch one asset by id",
		InputSchema: assetGetSchema,
	}, s.handleAssetGet)

	assetListSchema, _ := jsonschema.For[AssetListParams]()
	addToolWithLogging[AssetListParams, any](s, &mcp.Tool{
		Name:        "asset.list",
		Description: "List assets one page at a time",
		InputSchema: assetListSchema,
	}, s.handleAssetList)

	pairGetSchema, _ := jsonschema.For[AssetPairGetParams]()
	addToolWithLogging[AssetPairGetParams, any](s, &mcp.Tool{
		Name:        "assetPair.get",
		Description: "Fetch one asset pair with its base and quote assets",
		InputSchema: pairGetSchema,
	}, s.handleAssetPairGet)

	pairListSchema, _ := jsonschema.For[AssetPairListParams]()
	addToolWithLogging[AssetPairListParams, any](s, &mcp.Tool{
		Name:        "assetPair.list",
		Description: "List asset pairs one page at a time",
		InputSchema: pairListSchema,
	}, s.handleAssetPairList)
}

func (s *SDKServer) handleAssetGet(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AssetGetParams]) (*mcp.CallToolResultFor[any], error) {
	asset, err := s.service.RetrieveAsset(ctx, params.Arguments.ID)
	if err != nil {
		return s.errorResult(err), nil
	}
	return jsonResult(asset)
}

func (s *SDKServer) handleAssetList(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AssetListParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	page, err := s.service.RetrieveAssets(ctx, service.ListOptions{
		Page:      intOr(args.Page, 1),
		Size:      intOr(args.Size, s.config.DefaultPageSize),
		ShortName: args.ShortName,
		Sort:      args.Sort,
		Direction: args.Dir,
	})
	if err != nil {
		return s.errorResult(err), nil
	}
	return jsonResult(page)
}

func (s *SDKServer) handleAssetPairGet(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AssetPairGetParams]) (*mcp.CallToolResultFor[any], error) {
	pair, err := s.service.RetrieveAssetPair(ctx, params.Arguments.ID)
	if err != nil {
		return s.errorResult(err), nil
	}
	return jsonResult(pair)
}

func (s *SDKServer) handleAssetPairList(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AssetPairListParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	page, err := s.service.RetrieveAssetPairs(ctx, service.ListOptions{
		Page:      intOr(args.Page, 1),
		Size:      intOr(args.Size, s.config.DefaultPageSize),
		Sort:      args.Sort,
		Direction: args.Dir,
	})
	if err != nil {
		return s.errorResult(err), nil
	}
	return jsonResult(page)
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

// errorResult reports err to the client. Messages of unexpected errors
// stay in the log.
func (s *SDKServer) errorResult(err error) *mcp.CallToolResultFor[any] {
	message := "unexpected server error"
	if isClientError(err) {
		message = err.Error()
	} else {
		s.logger.Error("Tool call failed: %v", err)
	}
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
	}
}

// isClientError reports errors caused by the caller's input. Sort or join
// misuse and violations classified as server errors are not.
func isClientError(err error) bool {
	var (
		notFound   *service.NotFoundError
		badRequest *service.BadRequestError
		validation *models.ValidationError
		pagination *query.PaginationError
		violation  *integrity.Violation
	)
	if errors.As(err, &violation) {
		return violation.Status < 500
	}
	return errors.As(err, &notFound) ||
		errors.As(err, &badRequest) ||
		errors.As(err, &validation) ||
		errors.As(err, &pagination)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
