// Package listparams derives the parameters of a record list (page, page size,
// sort, filters, visible filter controls) from the URL query string, the
// previously stored navigation state and caller defaults, and keeps them in
// sync as the user pages, sorts and filters.
package listparams

import (
	"errors"
	"time"

	"github.com/mohae/deepcopy"
)

// Order is a sort direction.
type Order string

// Sort directions.
const (
	SortAsc  Order = "ASC"
	SortDesc Order = "DESC"
)

// Opposite returns the other sort direction. An unset order flips to DESC,
// the same way an implicit ASC would.
func (o Order) Opposite() Order {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Valid reports whether o is one of the two known directions.
func (o Order) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Filter maps a field name (or dotted path) to a filter value.
type Filter map[string]any

// Sort identifies a sort field and direction.
type Sort struct {
	Field string `json:"field"`
	Order Order  `json:"order"`
}

// Defaults applied when the caller does not set them.
const (
	DefaultPerPage  = 10
	DefaultDebounce = 500 * time.Millisecond
)

// DefaultSort is the sort used when the caller does not provide one.
var DefaultSort = Sort{Field: "id", Order: SortAsc}

// ErrMissingResource is returned when a coordinator is built without a resource.
var ErrMissingResource = errors.New("list params: resource is required")

// Params is the stored parameter set of one list. Zero values mean "not set":
// a zero Page or PerPage, an empty Sort or Order, and a nil Filter are all
// filled from defaults by GetQuery. Filter is always encoded so an empty
// filter survives a JSON round trip as non-nil.
type Params struct {
	Page             int             `json:"page,omitempty"`
	PerPage          int             `json:"perPage,omitempty"`
	Sort             string          `json:"sort,omitempty"`
	Order            Order           `json:"order,omitempty"`
	Filter           Filter          `json:"filter"`
	DisplayedFilters map[string]bool `json:"displayedFilters,omitempty"`
}

// Clone returns a deep copy of p so callers can never alias stored maps.
func (p Params) Clone() Params {
	out := p
	out.Filter = cloneFilter(p.Filter)
	if p.DisplayedFilters != nil {
		out.DisplayedFilters = make(map[string]bool, len(p.DisplayedFilters))
		for k, v := range p.DisplayedFilters {
			out.DisplayedFilters[k] = v
		}
	}
	return out
}

// IsZero reports whether no field of p is set.
func (p Params) IsZero() bool {
	return p.Page == 0 && p.PerPage == 0 && p.Sort == "" && p.Order == "" &&
		p.Filter == nil && p.DisplayedFilters == nil
}

func cloneFilter(f Filter) Filter {
	if f == nil {
		return nil
	}
	out, _ := deepcopy.Copy(map[string]any(f)).(map[string]any)
	return Filter(out)
}

// RemoveEmpty returns a copy of f without nil values, empty strings, empty
// slices, and nested maps that end up empty once pruned.
func RemoveEmpty(f Filter) Filter {
	out := Filter{}
	for k, v := range f {
		if pruned, ok := pruneValue(v); ok {
			out[k] = pruned
		}
	}
	return out
}

func pruneValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return val, val != ""
	case []any:
		return val, len(val) > 0
	case []string:
		return val, len(val) > 0
	case Filter:
		nested := RemoveEmpty(val)
		return map[string]any(nested), len(nested) > 0
	case map[string]any:
		nested := RemoveEmpty(Filter(val))
		return map[string]any(nested), len(nested) > 0
	default:
		return v, true
	}
}
