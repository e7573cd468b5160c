package models

import (
	"fmt"
	"time"

	"github.com/rediwo/refdata/types"
)

type AssetCreate struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Type      string `json:"type"`
}

func (c AssetCreate) Record() types.Record {
	return types.Record{
		"name":       c.Name,
		"short_name": c.ShortName,
		"type":       c.Type,
	}
}

type Asset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AssetPairCreate struct {
	BaseID  string `json:"base_id"`
	QuoteID string `json:"quote_id"`
}

func (c AssetPairCreate) Record() types.Record {
	return types.Record{
		"base_id":  c.BaseID,
		"quote_id": c.QuoteID,
	}
}

// AssetPair is a base/quote combination of two assets. Base and Quote are
// set when the pair was loaded with its relationships.
type AssetPair struct {
	ID        string    `json:"id"`
	BaseID    string    `json:"base_id"`
	QuoteID   string    `json:"quote_id"`
	Base      *Asset    `json:"base"`
	Quote     *Asset    `json:"quote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func AssetFromRecord(rec types.Record) (*Asset, error) {
	if rec == nil {
		return nil, nil
	}

	a := &Asset{
		ID:        stringValue(rec["id"]),
		Name:      stringValue(rec["name"]),
		ShortName: stringValue(rec["short_name"]),
		Type:      stringValue(rec["type"]),
	}
	var err error
	if a.CreatedAt, err = timeValue(rec["created_at"]); err != nil {
		return nil, fmt.Errorf("asset created_at: %w", err)
	}
	if a.UpdatedAt, err = timeValue(rec["updated_at"]); err != nil {
		return nil, fmt.Errorf("asset updated_at: %w", err)
	}
	return a, nil
}

func AssetPairFromRecord(rec types.Record) (*AssetPair, error) {
	if rec == nil {
		return nil, nil
	}

	p := &AssetPair{
		ID:      stringValue(rec["id"]),
		BaseID:  stringValue(rec["base_id"]),
		QuoteID: stringValue(rec["quote_id"]),
	}
	var err error
	if p.CreatedAt, err = timeValue(rec["created_at"]); err != nil {
		return nil, fmt.Errorf("asset pair created_at: %w", err)
	}
	if p.UpdatedAt, err = timeValue(rec["updated_at"]); err != nil {
		return nil, fmt.Errorf("asset pair updated_at: %w", err)
	}

	if base, ok := rec["base"].(types.Record); ok {
		if p.Base, err = AssetFromRecord(base); err != nil {
			return nil, err
		}
	}
	if quote, ok := rec["quote"].(types.Record); ok {
		if p.Quote, err = AssetFromRecord(quote); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func AssetsFromRecords(recs []types.Record) ([]*Asset, error) {
	out := make([]*Asset, 0, len(recs))
	for _, rec := range recs {
		a, err := AssetFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func AssetPairsFromRecords(recs []types.Record) ([]*AssetPair, error) {
	out := make([]*AssetPair, 0, len(recs))
	for _, rec := range recs {
		p, err := AssetPairFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func timeValue(v any) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return val.UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised time %q", val)
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", v)
	}
}
