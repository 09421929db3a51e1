package listparams

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ValidQueryParams lists the query-string keys that carry list parameters.
var ValidQueryParams = []string{
	"page",
	"perPage",
	"sort",
	"order",
	"filter",
	"displayedFilters",
}

// Parse extracts list parameters from a URL search string. Unknown keys are
// dropped. filter and displayedFilters are JSON-decoded; a value that fails to
// decode is removed without affecting the other fields. Unparsable page and
// perPage values are left unset so GetQuery fills them from defaults.
func Parse(search string) Params {
	values, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
	if err != nil && len(values) == 0 {
		return Params{}
	}

	var p Params
	if v, ok := lookup(values, "page"); ok {
		p.Page = GetNumberOrDefault(v, 0)
	}
	if v, ok := lookup(values, "perPage"); ok {
		p.PerPage = GetNumberOrDefault(v, 0)
	}
	if v, ok := lookup(values, "sort"); ok {
		p.Sort = v
	}
	if v, ok := lookup(values, "order"); ok {
		if o := Order(strings.ToUpper(v)); o.Valid() {
			p.Order = o
		}
	}
	if v, ok := lookup(values, "filter"); ok {
		var f map[string]any
		if json.Unmarshal([]byte(v), &f) == nil && f != nil {
			p.Filter = Filter(f)
		}
	}
	if v, ok := lookup(values, "displayedFilters"); ok {
		var d map[string]bool
		if json.Unmarshal([]byte(v), &d) == nil && d != nil {
			p.DisplayedFilters = d
		}
	}
	return p
}

// HasLocationParams reports whether search carries any recognized list key.
func HasLocationParams(search string) bool {
	values, _ := url.ParseQuery(strings.TrimPrefix(search, "?"))
	for _, k := range ValidQueryParams {
		if _, ok := lookup(values, k); ok {
			return true
		}
	}
	return false
}

// Encode serializes p into a query string (without the leading "?"). Unset
// fields are omitted; keys are sorted.
func Encode(p Params) string {
	values := url.Values{}
	if p.Page != 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage != 0 {
		values.Set("perPage", strconv.Itoa(p.PerPage))
	}
	if p.Sort != "" {
		values.Set("sort", p.Sort)
	}
	if p.Order != "" {
		values.Set("order", string(p.Order))
	}
	if len(p.Filter) > 0 {
		if b, err := json.Marshal(p.Filter); err == nil {
			values.Set("filter", string(b))
		}
	}
	if len(p.DisplayedFilters) > 0 {
		if b, err := json.Marshal(p.DisplayedFilters); err == nil {
			values.Set("displayedFilters", string(b))
		}
	}
	return values.Encode()
}

func lookup(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return "", false
	}
	return vs[0], true
}
