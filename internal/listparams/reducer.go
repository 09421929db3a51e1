package listparams

// ActionType names a parameter transition.
type ActionType string

// Supported transitions.
const (
	ActionSetPage    ActionType = "SET_PAGE"
	ActionSetPerPage ActionType = "SET_PER_PAGE"
	ActionSetSort    ActionType = "SET_SORT"
	ActionSetFilter  ActionType = "SET_FILTER"
)

// Action is one parameter transition. Only the fields relevant to Type are read.
type Action struct {
	Type    ActionType
	Page    int
	PerPage int

	// SetSort. An empty Order toggles the current direction when Field is
	// already the sort field, and means ASC otherwise.
	Field string
	Order Order

	// SetFilter. A nil DisplayedFilters keeps the current visibility map.
	Filter           Filter
	DisplayedFilters map[string]bool
}

// SetPage returns a SET_PAGE action.
func SetPage(page int) Action { return Action{Type: ActionSetPage, Page: page} }

// SetPerPage returns a SET_PER_PAGE action.
func SetPerPage(perPage int) Action { return Action{Type: ActionSetPerPage, PerPage: perPage} }

// SetSort returns a SET_SORT action.
func SetSort(field string, order Order) Action {
	return Action{Type: ActionSetSort, Field: field, Order: order}
}

// SetFilter returns a SET_FILTER action.
func SetFilter(filter Filter, displayed map[string]bool) Action {
	return Action{Type: ActionSetFilter, Filter: filter, DisplayedFilters: displayed}
}

// PerPagePolicy decides what SET_PER_PAGE does to the current page.
type PerPagePolicy int

const (
	// PerPageResetsPage moves back to page 1 when the page size changes.
	PerPageResetsPage PerPagePolicy = iota
	// PerPageKeepsPage leaves the page untouched; out-of-range pages are
	// clamped by the controller once the new total is known.
	PerPageKeepsPage
)

// ReducerOptions tunes Reduce.
type ReducerOptions struct {
	PerPagePolicy PerPagePolicy
}

// Reduce applies a to current and returns the new parameters. current is not
// modified. Unknown action types return current unchanged.
func Reduce(current Params, a Action, opts ReducerOptions) Params {
	next := current.Clone()

	switch a.Type {
	case ActionSetPage:
		next.Page = a.Page

	case ActionSetPerPage:
		next.PerPage = a.PerPage
		if opts.PerPagePolicy == PerPageResetsPage {
			next.Page = 1
		}

	case ActionSetSort:
		if a.Field == current.Sort {
			if a.Order != "" {
				next.Order = a.Order
			} else {
				next.Order = current.Order.Opposite()
			}
		} else {
			next.Sort = a.Field
			next.Order = a.Order
			if next.Order == "" {
				next.Order = SortAsc
			}
		}
		next.Page = 1

	case ActionSetFilter:
		next.Filter = RemoveEmpty(a.Filter)
		if a.DisplayedFilters != nil {
			next.DisplayedFilters = make(map[string]bool, len(a.DisplayedFilters))
			for k, v := range a.DisplayedFilters {
				next.DisplayedFilters[k] = v
			}
		}
		next.Page = 1

	default:
		return current
	}

	return next
}
