package listcontroller

import (
	"errors"
	"testing"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/navstate"
)

func ids(n int) []dataprovider.Identifier {
	out := make([]dataprovider.Identifier, n)
	for i := range out {
		out[i] = dataprovider.ToIdentifier(i + 1)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, 0, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.perPage); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestCorrectPage(t *testing.T) {
	total := func(n int) *int { return &n }
	tests := []struct {
		name    string
		page    int
		perPage int
		loading bool
		ids     []dataprovider.Identifier
		total   *int
		want    int
	}{
		{name: "in range", page: 2, perPage: 10, ids: ids(10), total: total(25), want: 2},
		{name: "zero page", page: 0, perPage: 10, ids: ids(10), total: total(25), want: 1},
		{name: "negative page while loading", page: -1, perPage: 10, loading: true, want: 1},
		{name: "empty page past first", page: 4, perPage: 10, total: total(25), want: 1},
		{name: "empty first page stays", page: 1, perPage: 10, total: total(0), want: 1},
		{name: "past last with stale ids", page: 5, perPage: 100, ids: ids(10), total: total(250), want: 3},
		{name: "loading leaves page alone", page: 9, perPage: 10, loading: true, total: total(25), want: 9},
		{name: "unknown total", page: 9, perPage: 10, ids: ids(10), want: 9},
		{name: "last page exactly", page: 3, perPage: 10, ids: ids(5), total: total(25), want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectPage(tt.page, tt.perPage, tt.loading, tt.ids, tt.total)
			if got != tt.want {
				t.Errorf("CorrectPage = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCorrectionReason(t *testing.T) {
	if got := correctionReason(0, 1); got != "below_first" {
		t.Errorf("reason(0, 1) = %q, want below_first", got)
	}
	if got := correctionReason(4, 1); got != "empty_page" {
		t.Errorf("reason(4, 1) = %q, want empty_page", got)
	}
	if got := correctionReason(5, 3); got != "past_last" {
		t.Errorf("reason(5, 3) = %q, want past_last", got)
	}
}

func TestEffectiveListState(t *testing.T) {
	two := 2
	zero := 0
	persisted := navstate.ListState{IDs: []dataprovider.Identifier{"a", "b"}, Total: &two}

	t.Run("no total uses persisted", func(t *testing.T) {
		got := EffectiveListState(State{Loading: true}, persisted)
		if len(got.IDs) != 2 || got.Total == nil || *got.Total != 2 {
			t.Errorf("got ids=%v total=%v, want persisted", got.IDs, got.Total)
		}
		if !got.Loaded {
			t.Error("Loaded = false, want true from persisted ids")
		}
		if !got.Loading {
			t.Error("Loading must pass through")
		}
	})

	t.Run("total zero not masked", func(t *testing.T) {
		got := EffectiveListState(State{IDs: []dataprovider.Identifier{}, Total: &zero, Loaded: true}, persisted)
		if len(got.IDs) != 0 || *got.Total != 0 {
			t.Errorf("got ids=%v total=%d, want empty/0", got.IDs, *got.Total)
		}
	})

	t.Run("nothing persisted", func(t *testing.T) {
		got := EffectiveListState(State{Error: errors.New("x")}, navstate.ListState{})
		if got.Loaded {
			t.Error("Loaded = true, want false")
		}
		if got.Total != nil {
			t.Errorf("Total = %v, want nil", *got.Total)
		}
		if got.Error == nil {
			t.Error("Error must pass through")
		}
	})
}
