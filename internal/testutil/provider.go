package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cast"

	"github.com/HerbHall/adminlist/internal/dataprovider"
)

// Compile-time interface check.
var _ dataprovider.Provider = (*StubProvider)(nil)

// StubProvider is a thread-safe in-memory provider that records every
// request. Filters match top-level fields by equality; sort compares numbers
// numerically and everything else as strings.
type StubProvider struct {
	mu      sync.Mutex
	records map[string][]dataprovider.Record
	calls   []dataprovider.GetListParams
	err     error
	gate    chan struct{}
	noTotal bool
}

// NewStubProvider returns an empty StubProvider.
func NewStubProvider() *StubProvider {
	return &StubProvider{records: make(map[string][]dataprovider.Record)}
}

// Seed appends records to resource.
func (p *StubProvider) Seed(resource string, recs ...dataprovider.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[resource] = append(p.records[resource], recs...)
}

// Truncate removes all but the first n records of resource.
func (p *StubProvider) Truncate(resource string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < len(p.records[resource]) {
		p.records[resource] = p.records[resource][:n]
	}
}

// FailWith makes every following request return err. A nil err clears it.
func (p *StubProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// OmitTotal makes results report an unknown total.
func (p *StubProvider) OmitTotal(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noTotal = omit
}

// Block makes requests wait until the returned release function is called
// once per blocked request, or their context ends.
func (p *StubProvider) Block() (release func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	gate := make(chan struct{})
	p.gate = gate
	return func() { gate <- struct{}{} }
}

// Unblock stops gating new requests.
func (p *StubProvider) Unblock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = nil
}

// Calls returns a copy of every request received so far.
func (p *StubProvider) Calls() []dataprovider.GetListParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]dataprovider.GetListParams, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of requests received so far.
func (p *StubProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// GetList serves one page from the seeded records.
func (p *StubProvider) GetList(ctx context.Context, resource string, params dataprovider.GetListParams) (*dataprovider.GetListResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, params)
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}

	var matched []dataprovider.Record
	for _, rec := range p.records[resource] {
		if matches(rec, params.Filter) {
			matched = append(matched, rec)
		}
	}
	if field := params.Sort.Field; field != "" {
		desc := params.Sort.Order == "DESC"
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return less(matched[j][field], matched[i][field])
			}
			return less(matched[i][field], matched[j][field])
		})
	}

	total := len(matched)
	perPage := params.Pagination.PerPage
	if perPage <= 0 {
		perPage = total
	}
	start := params.Pagination.Offset()
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	res := &dataprovider.GetListResult{
		IDs:  []dataprovider.Identifier{},
		Data: map[dataprovider.Identifier]dataprovider.Record{},
	}
	for _, rec := range matched[start:end] {
		id := dataprovider.ToIdentifier(rec["id"])
		res.IDs = append(res.IDs, id)
		res.Data[id] = rec
	}
	if !p.noTotal {
		res.Total = dataprovider.IntPtr(total)
	}
	return res, nil
}

func matches(rec dataprovider.Record, filter map[string]any) bool {
	for k, want := range filter {
		if fmt.Sprint(rec[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func less(a, b any) bool {
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return cast.ToString(a) < cast.ToString(b)
}
