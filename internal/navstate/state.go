// Package navstate persists per-resource navigation state: the ids and total
// of the last fetched page and the last dispatched list params. Controllers
// read it to keep showing the previous page while a new fetch is in flight.
package navstate

import (
	"context"
	"errors"
	"time"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listparams"
)

// ErrNotFound is returned when no state has been recorded for a resource.
var ErrNotFound = errors.New("navigation state not found")

// ListState is the persisted state of one resource's list.
type ListState struct {
	IDs       []dataprovider.Identifier `json:"ids"`
	Total     *int                      `json:"total,omitempty"`
	Params    *listparams.Params        `json:"params,omitempty"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// Clone returns a deep copy of s.
func (s ListState) Clone() ListState {
	out := ListState{UpdatedAt: s.UpdatedAt}
	if s.IDs != nil {
		out.IDs = append([]dataprovider.Identifier(nil), s.IDs...)
	}
	if s.Total != nil {
		out.Total = dataprovider.IntPtr(*s.Total)
	}
	if s.Params != nil {
		p := s.Params.Clone()
		out.Params = &p
	}
	return out
}

// Reader gives read-only access to persisted state.
type Reader interface {
	// Snapshot returns the state of resource, or ErrNotFound.
	Snapshot(ctx context.Context, resource string) (ListState, error)
}

// Store reads and writes persisted state. It also satisfies
// listparams.ParamsStore so a Coordinator can seed from it.
type Store interface {
	Reader
	listparams.ParamsStore

	// SaveList records the ids and total of the last fetched page. The
	// stored params are left untouched.
	SaveList(ctx context.Context, resource string, ids []dataprovider.Identifier, total *int) error
}

// loadParams implements LoadParams on top of Snapshot.
func loadParams(ctx context.Context, r Reader, resource string) (listparams.Params, bool, error) {
	st, err := r.Snapshot(ctx, resource)
	if errors.Is(err, ErrNotFound) {
		return listparams.Params{}, false, nil
	}
	if err != nil {
		return listparams.Params{}, false, err
	}
	if st.Params == nil {
		return listparams.Params{}, false, nil
	}
	return st.Params.Clone(), true, nil
}
