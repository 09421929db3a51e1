package listparams

import (
	"encoding/json"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/spf13/cast"
)

// QueryInput holds the sources GetQuery merges.
type QueryInput struct {
	// Location is the parsed URL query string. When it carries any field it
	// takes precedence over stored params.
	Location            Params
	Params              Params
	FilterDefaultValues Filter
	Sort                Sort
	PerPage             int
}

// Query is the effective parameter set of a list plus derived values.
type Query struct {
	Params
	FilterValues Filter    `json:"filterValues"`
	Signature    Signature `json:"-"`
}

// HasCustomParams reports whether the user already chose a sort, page, page
// size or filter for this list. Stored params start out as a zero value with
// no filter at all, which never counts as custom.
func HasCustomParams(p Params) bool {
	if p.Filter == nil {
		return false
	}
	return len(p.Filter) > 0 ||
		p.Order != "" ||
		p.Page != 1 ||
		p.PerPage != 0 ||
		p.Sort != ""
}

// GetQuery merges the URL query, the stored params and the caller defaults
// into the effective parameter set. The result shares no maps with the input.
func GetQuery(in QueryInput) Params {
	var q Params
	switch {
	case !in.Location.IsZero():
		q = in.Location.Clone()
	case HasCustomParams(in.Params):
		q = in.Params.Clone()
	default:
		q = Params{Filter: cloneFilter(in.FilterDefaultValues)}
		if q.Filter == nil {
			q.Filter = Filter{}
		}
	}

	if q.Sort == "" {
		q.Sort = in.Sort.Field
		q.Order = in.Sort.Order
	}
	if q.Order == "" {
		q.Order = SortAsc
	}
	// Page and perPage are always positive; anything else (a hand-edited
	// "?perPage=-5") falls back to the caller default.
	if q.PerPage <= 0 {
		q.PerPage = in.PerPage
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

// MergeFilters returns base overlaid with permanent; permanent wins on key
// collisions. Neither input is modified.
func MergeFilters(base, permanent Filter) Filter {
	out := map[string]any(cloneFilter(base))
	if out == nil {
		out = map[string]any{}
	}
	if len(permanent) > 0 {
		_ = mergo.Merge(&out, map[string]any(cloneFilter(permanent)), mergo.WithOverride)
	}
	return Filter(out)
}

// GetNumberOrDefault converts v to an int. Strings are parsed like a base-10
// integer prefix ("7px" is 7); nil or anything without a leading number
// yields def.
func GetNumberOrDefault(v any, def int) int {
	switch val := v.(type) {
	case nil:
		return def
	case string:
		n, ok := parseIntPrefix(val)
		if !ok {
			return def
		}
		return n
	case json.Number:
		return GetNumberOrDefault(val.String(), def)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
