package listparams

import "strings"

// SetPath returns a copy of f with value stored at the dotted path, creating
// intermediate maps as needed ("author.name" sets f["author"]["name"]).
func SetPath(f Filter, path string, value any) Filter {
	out := cloneFilter(f)
	if out == nil {
		out = Filter{}
	}
	keys := strings.Split(path, ".")
	cur := map[string]any(out)
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur[k].(map[string]any)
		if !ok {
			if nf, isFilter := cur[k].(Filter); isFilter {
				next = map[string]any(nf)
			} else {
				next = map[string]any{}
			}
			cur[k] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
	return out
}

// RemovePath returns a copy of f without the value at the dotted path.
// Parent maps left empty by the removal are dropped too.
func RemovePath(f Filter, path string) Filter {
	out := cloneFilter(f)
	if out == nil {
		return Filter{}
	}
	removeKeys(map[string]any(out), strings.Split(path, "."))
	return out
}

func removeKeys(m map[string]any, keys []string) {
	if len(keys) == 1 {
		delete(m, keys[0])
		return
	}
	child, ok := m[keys[0]].(map[string]any)
	if !ok {
		if nf, isFilter := m[keys[0]].(Filter); isFilter {
			child = map[string]any(nf)
		} else {
			return
		}
	}
	removeKeys(child, keys[1:])
	if len(child) == 0 {
		delete(m, keys[0])
	}
}
