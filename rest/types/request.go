package types

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/service"
)

// ParseListParams reads page, size, short_name, sort and dir. Missing page
// is 1 and missing size is defaultSize; range checks are left to the page
// fetcher.
func ParseListParams(params url.Values, defaultSize int) (service.ListOptions, error) {
	opts := service.ListOptions{
		Page:      1,
		Size:      defaultSize,
		ShortName: params.Get("short_name"),
		Sort:      params.Get("sort"),
		Direction: params.Get("dir"),
	}

	if page := params.Get("page"); page != "" {
		p, err := strconv.Atoi(page)
		if err != nil {
			return opts, fmt.Errorf("page must be an integer")
		}
		opts.Page = p
	}

	if size := params.Get("size"); size != "" {
		s, err := strconv.Atoi(size)
		if err != nil {
			return opts, fmt.Errorf("size must be an integer")
		}
		opts.Size = s
	}

	return opts, nil
}

// AssetCreateRequest distinguishes missing fields from empty ones
type AssetCreateRequest struct {
	Name      *string `json:"name"`
	ShortName *string `json:"short_name"`
	Type      *string `json:"type"`
}

func (r AssetCreateRequest) Model() (models.AssetCreate, error) {
	if err := required(map[string]*string{"name": r.Name, "short_name": r.ShortName, "type": r.Type}); err != nil {
		return models.AssetCreate{}, err
	}
	return models.AssetCreate{Name: *r.Name, ShortName: *r.ShortName, Type: *r.Type}, nil
}

type AssetPairCreateRequest struct {
	BaseID  *string `json:"base_id"`
	QuoteID *string `json:"quote_id"`
}

func (r AssetPairCreateRequest) Model() (models.AssetPairCreate, error) {
	if err := required(map[string]*string{"base_id": r.BaseID, "quote_id": r.QuoteID}); err != nil {
		return models.AssetPairCreate{}, err
	}
	return models.AssetPairCreate{BaseID: *r.BaseID, QuoteID: *r.QuoteID}, nil
}

func required(fields map[string]*string) error {
	for _, name := range []string{"name", "short_name", "type", "base_id", "quote_id"} {
		if v, ok := fields[name]; ok && v == nil {
			return &models.ValidationError{Field: name, Message: "required field is missing"}
		}
	}
	return nil
}
