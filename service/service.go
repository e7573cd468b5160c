// Package service implements the asset and asset-pair operations on top
// of the query core. Every call runs in its own session.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rediwo/refdata/database"
	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/query"
	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

// ListOptions selects one page of a listing. Sort names a user-facing
// field and Direction is "asc" or "desc".
type ListOptions struct {
	Page      int
	Size      int
	ShortName string
	Sort      string
	Direction string
}

// Page is the wire shape of a listing
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

type Service struct {
	db       *database.DB
	registry *schema.Registry
	fetcher  *query.Fetcher
	logger   logger.Logger
}

func New(db *database.DB, registry *schema.Registry, fetcher *query.Fetcher) *Service {
	return &Service{
		db:       db,
		registry: registry,
		fetcher:  fetcher,
		logger:   logger.GetGlobalLogger(),
	}
}

func (s *Service) SetLogger(l logger.Logger) {
	s.logger = logger.OrGlobal(l)
}

func (s *Service) session() *session.Session {
	return session.New(s.db, s.registry)
}

var (
	assetSortFields = map[string]string{
		"name":       "name",
		"short_name": "short_name",
		"type":       "type",
		"created_at": schema.CreatedAtField,
		"updated_at": schema.UpdatedAtField,
	}
	pairSortFields = map[string]string{
		"created_at": schema.CreatedAtField,
		"updated_at": schema.UpdatedAtField,
	}
)

func (s *Service) CreateAsset(ctx context.Context, in models.AssetCreate) (*models.Asset, error) {
	rec := in.Record()
	if err := s.validate(models.AssetModel, rec); err != nil {
		return nil, err
	}

	sess := s.session()
	defer sess.Close()
	if err := query.TryAddCommitRefresh(ctx, sess, models.AssetModel, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Created asset %s (%s)", rec["id"], in.ShortName)
	return models.AssetFromRecord(rec)
}

func (s *Service) RetrieveAssets(ctx context.Context, opts ListOptions) (*Page[*models.Asset], error) {
	req, err := pageRequest(opts, assetSortFields)
	if err != nil {
		return nil, err
	}
	if opts.ShortName != "" {
		req.Filters = append(req.Filters, types.Eq("short_name", opts.ShortName))
	}

	sess := s.session()
	defer sess.Close()
	page, err := s.fetcher.FetchPage(ctx, sess, models.AssetModel, req)
	if err != nil {
		return nil, err
	}
	return convertPage(page, models.AssetsFromRecords)
}

func (s *Service) RetrieveAsset(ctx context.Context, id string) (*models.Asset, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	sess := s.session()
	defer sess.Close()
	rec, err := sess.Get(ctx, models.AssetModel, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAssetNotFound
	}
	return models.AssetFromRecord(rec)
}

func (s *Service) DeleteAsset(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	sess := s.session()
	defer sess.Close()
	rec, err := sess.Get(ctx, models.AssetModel, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrAssetNotFound
	}
	if err := query.TryDeleteCommit(ctx, sess, models.AssetModel, rec); err != nil {
		return err
	}

	s.logger.Info("Deleted asset %s", id)
	return nil
}

// CreateAssetPair stores a pair and returns it with base and quote loaded
func (s *Service) CreateAssetPair(ctx context.Context, in models.AssetPairCreate) (*models.AssetPair, error) {
	rec := in.Record()
	if err := s.validate(models.AssetPairModel, rec); err != nil {
		return nil, err
	}

	sess := s.session()
	defer sess.Close()
	if err := query.TryAddCommitRefresh(ctx, sess, models.AssetPairModel, rec); err != nil {
		return nil, err
	}

	full, err := s.fetcher.FetchFull(ctx, sess, models.AssetPairModel, rec["id"])
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, fmt.Errorf("asset pair %v vanished after commit", rec["id"])
	}

	s.logger.Info("Created asset pair %s", rec["id"])
	return models.AssetPairFromRecord(full)
}

func (s *Service) RetrieveAssetPairs(ctx context.Context, opts ListOptions) (*Page[*models.AssetPair], error) {
	req, err := pageRequest(opts, pairSortFields)
	if err != nil {
		return nil, err
	}

	sess := s.session()
	defer sess.Close()
	page, err := s.fetcher.FetchPage(ctx, sess, models.AssetPairModel, req)
	if err != nil {
		return nil, err
	}
	return convertPage(page, models.AssetPairsFromRecords)
}

func (s *Service) RetrieveAssetPair(ctx context.Context, id string) (*models.AssetPair, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	sess := s.session()
	defer sess.Close()
	rec, err := s.fetcher.FetchFull(ctx, sess, models.AssetPairModel, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAssetPairNotFound
	}
	return models.AssetPairFromRecord(rec)
}

func (s *Service) DeleteAssetPair(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	sess := s.session()
	defer sess.Close()
	rec, err := sess.Get(ctx, models.AssetPairModel, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrAssetPairNotFound
	}
	if err := query.TryDeleteCommit(ctx, sess, models.AssetPairModel, rec); err != nil {
		return err
	}

	s.logger.Info("Deleted asset pair %s", id)
	return nil
}

func (s *Service) validate(model string, rec types.Record) error {
	sch, err := s.registry.Get(model)
	if err != nil {
		return err
	}
	return models.Validate(sch, rec)
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &models.ValidationError{Field: "id", Message: "invalid uuid"}
	}
	return nil
}

func pageRequest(opts ListOptions, sortFields map[string]string) (query.PageRequest, error) {
	req := query.PageRequest{Page: opts.Page, Size: opts.Size}
	if opts.Sort == "" {
		return req, nil
	}

	col, ok := sortFields[opts.Sort]
	if !ok {
		return req, &BadRequestError{Message: fmt.Sprintf("Unknown sort field %s.", opts.Sort)}
	}
	dir, err := types.ParseOrder(opts.Direction)
	if err != nil {
		return req, &BadRequestError{Message: fmt.Sprintf("Unknown sort direction %s.", opts.Direction)}
	}
	req.Sort = &query.Sort{Field: col, Direction: dir}
	return req, nil
}

func convertPage[T any](page *query.PageResult, convert func([]types.Record) ([]T, error)) (*Page[T], error) {
	items, err := convert(page.Items)
	if err != nil {
		return nil, err
	}
	return &Page[T]{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
	}, nil
}
