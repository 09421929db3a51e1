// Package dataprovider defines the record-fetching contract used by list
// controllers and ships SQLite and REST implementations plus caching,
// rate-limiting and latest-wins decorators.
package dataprovider

import (
	"context"
	"errors"

	"github.com/spf13/cast"

	"github.com/HerbHall/adminlist/internal/listparams"
)

// Identifier is a record id. Numeric ids are carried in their decimal form.
type Identifier string

// ToIdentifier converts a raw id (string, number, ...) to an Identifier.
func ToIdentifier(v any) Identifier {
	return Identifier(cast.ToString(v))
}

// Record is one resource record as a JSON-like document.
type Record map[string]any

// Pagination selects one page of results.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// Offset returns the number of records before the page.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// GetListParams describes one list request.
type GetListParams struct {
	Pagination Pagination        `json:"pagination"`
	Sort       listparams.Sort   `json:"sort"`
	Filter     listparams.Filter `json:"filter"`
}

// GetListResult is one page of records. A nil Total means the total is not
// known yet.
type GetListResult struct {
	IDs   []Identifier          `json:"ids"`
	Data  map[Identifier]Record `json:"data"`
	Total *int                  `json:"total,omitempty"`
}

// Records returns the page's records in id order.
func (r *GetListResult) Records() []Record {
	out := make([]Record, 0, len(r.IDs))
	for _, id := range r.IDs {
		if rec, ok := r.Data[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Provider fetches lists of records.
type Provider interface {
	GetList(ctx context.Context, resource string, params GetListParams) (*GetListResult, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, resource string, params GetListParams) (*GetListResult, error)

// GetList calls f.
func (f ProviderFunc) GetList(ctx context.Context, resource string, params GetListParams) (*GetListResult, error) {
	return f(ctx, resource, params)
}

// Sentinel errors returned by providers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidField = errors.New("invalid field name")
	ErrSuperseded   = errors.New("request superseded by a newer one")
)

// Limits applied by normalizeParams.
const (
	maxPerPage     = 1000
	defaultPerPage = listparams.DefaultPerPage
)

// normalizeParams applies defaults and caps to list params.
func normalizeParams(p GetListParams) GetListParams {
	if p.Pagination.PerPage <= 0 {
		p.Pagination.PerPage = defaultPerPage
	}
	if p.Pagination.PerPage > maxPerPage {
		p.Pagination.PerPage = maxPerPage
	}
	if p.Pagination.Page < 1 {
		p.Pagination.Page = 1
	}
	if p.Sort.Field == "" {
		p.Sort.Field = listparams.DefaultSort.Field
	}
	if p.Sort.Order != listparams.SortDesc {
		p.Sort.Order = listparams.SortAsc
	}
	return p
}

// IntPtr returns a pointer to n, for building results with a known total.
func IntPtr(n int) *int { return &n }
