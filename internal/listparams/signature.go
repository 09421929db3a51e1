package listparams

import (
	"encoding/json"
	"strconv"
)

// Signature identifies everything the effective query depends on. Two
// signatures built from equal inputs have equal keys, so callers can compare
// them to skip redundant fetches.
type Signature struct {
	Resource            string
	Location            Params
	Params              Params
	FilterDefaultValues Filter
	Sort                string
	PerPage             int
}

// NewSignature builds a Signature from its parts.
func NewSignature(resource string, location, params Params, defaults Filter, sort Sort, perPage int) Signature {
	return Signature{
		Resource:            resource,
		Location:            location.Clone(),
		Params:              params.Clone(),
		FilterDefaultValues: cloneFilter(defaults),
		Sort:                encodeSort(sort),
		PerPage:             perPage,
	}
}

// Key returns a canonical string form of s. encoding/json sorts map keys, so
// the key is independent of map iteration order.
func (s Signature) Key() string {
	location, _ := json.Marshal(s.Location)
	params, _ := json.Marshal(s.Params)
	defaults, _ := json.Marshal(s.FilterDefaultValues)
	return s.Resource + "|" + string(location) + "|" + string(params) + "|" + string(defaults) + "|" + s.Sort + "|" + strconv.Itoa(s.PerPage)
}

// Equal reports whether s and other describe the same request.
func (s Signature) Equal(other Signature) bool {
	return s.Key() == other.Key()
}

func encodeSort(s Sort) string {
	b, _ := json.Marshal(s)
	return string(b)
}
