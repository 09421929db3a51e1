package listcontroller

import (
	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/navstate"
)

// TotalPages returns the number of pages needed for total records, at least 1.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// CorrectPage returns the page the list should be on. It returns page itself
// when no correction is needed.
//
// A page below 1 always becomes 1. Once loading is done, a page past the first
// with no ids becomes 1, and a page past the last one becomes the last one.
// A nil total leaves the page alone.
func CorrectPage(page, perPage int, loading bool, ids []dataprovider.Identifier, total *int) int {
	if page <= 0 {
		return 1
	}
	if loading {
		return page
	}
	if page > 1 && len(ids) == 0 {
		return 1
	}
	if total != nil {
		if last := TotalPages(*total, perPage); page > last {
			return last
		}
	}
	return page
}

// correctionReason labels a page correction for metrics.
func correctionReason(page, corrected int) string {
	switch {
	case page <= 0:
		return "below_first"
	case corrected == 1:
		return "empty_page"
	default:
		return "past_last"
	}
}

// EffectiveListState fills a list state that has no total yet from the
// persisted state, so the previous page stays visible until the first fetch
// completes. A completed fetch, even one with total 0, is never masked.
func EffectiveListState(current State, persisted navstate.ListState) State {
	out := current
	if current.Total == nil {
		out.IDs = persisted.IDs
		out.Total = persisted.Total
	}
	out.Loaded = current.Loaded || len(persisted.IDs) > 0
	return out
}
