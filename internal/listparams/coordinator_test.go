package listparams

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memParams struct {
	mu     sync.Mutex
	params map[string]Params
	saves  int
}

func (m *memParams) LoadParams(_ context.Context, resource string) (Params, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.params[resource]
	return p, ok, nil
}

func (m *memParams) SaveParams(_ context.Context, resource string, p Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.params == nil {
		m.params = map[string]Params{}
	}
	m.params[resource] = p
	m.saves++
	return nil
}

func newCoordinator(t *testing.T, opts Options, extra ...CoordinatorOption) *Coordinator {
	t.Helper()
	extra = append(extra, WithLogger(zap.NewNop()))
	c, err := NewCoordinator(context.Background(), opts, extra...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewCoordinator_RequiresResource(t *testing.T) {
	_, err := NewCoordinator(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingResource)
}

func TestCoordinator_DefaultQuery(t *testing.T) {
	c := newCoordinator(t, Options{
		Resource:            "posts",
		FilterDefaultValues: Filter{"published": true},
		Filter:              Filter{"tenant": "acme"},
	})

	q := c.Query()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPerPage, q.PerPage)
	assert.Equal(t, "id", q.Sort)
	assert.Equal(t, SortAsc, q.Order)
	assert.Equal(t, Filter{"published": true}, q.Filter)
	assert.Equal(t, Filter{"published": true, "tenant": "acme"}, q.FilterValues)
	assert.NotNil(t, q.DisplayedFilters)
}

func TestCoordinator_SyncModifiersApplyInOrder(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts", Debounce: -1})

	c.SetPage(3)
	assert.Equal(t, 3, c.Query().Page)

	c.SetSort("title", "")
	q := c.Query()
	assert.Equal(t, "title", q.Sort)
	assert.Equal(t, SortAsc, q.Order)
	assert.Equal(t, 1, q.Page)

	c.SetSort("title", "")
	assert.Equal(t, SortDesc, c.Query().Order)

	c.SetPage(2)
	c.SetPerPage(50)
	q = c.Query()
	assert.Equal(t, 50, q.PerPage)
	assert.Equal(t, 1, q.Page)
}

func TestCoordinator_PerPageKeepsPagePolicy(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts", PerPagePolicy: PerPageKeepsPage})
	c.SetPage(4)
	c.SetPerPage(5)
	assert.Equal(t, 4, c.Query().Page)
}

func TestCoordinator_SetFiltersDebounced(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts", Debounce: 200 * time.Millisecond})

	var dispatched atomic.Int32
	var mu sync.Mutex
	var last Query
	c.OnChange(func(q Query) {
		dispatched.Add(1)
		mu.Lock()
		last = q
		mu.Unlock()
	})

	c.SetFilters(Filter{"q": "a"}, nil)
	time.Sleep(30 * time.Millisecond)
	c.SetFilters(Filter{"q": "ab"}, nil)
	time.Sleep(30 * time.Millisecond)
	c.SetFilters(Filter{"q": "abc", "empty": ""}, map[string]bool{"q": true, "hidden": false})

	assert.True(t, c.HasPendingFilters())
	require.Eventually(t, func() bool { return dispatched.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Nothing else fires once the window has passed.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), dispatched.Load())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, Filter{"q": "abc"}, last.Filter)
	assert.Equal(t, map[string]bool{"q": true}, last.DisplayedFilters)
	assert.Equal(t, 1, last.Page)
}

func TestCoordinator_FlushFilters(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts", Debounce: time.Hour})

	c.SetFilters(Filter{"q": "now"}, nil)
	assert.Empty(t, c.Query().Filter)

	c.FlushFilters()
	assert.Equal(t, Filter{"q": "now"}, c.Query().Filter)
	assert.False(t, c.HasPendingFilters())
}

func TestCoordinator_ShowAndHideFilter(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts", Debounce: -1})

	c.ShowFilter("author.name", "ann")
	q := c.Query()
	assert.Equal(t, map[string]any{"name": "ann"}, q.Filter["author"])
	assert.True(t, q.DisplayedFilters["author.name"])

	c.ShowFilter("q", "go")
	c.HideFilter("author.name")
	q = c.Query()
	assert.NotContains(t, q.Filter, "author")
	assert.Equal(t, "go", q.Filter["q"])
	assert.False(t, q.DisplayedFilters["author.name"])
	assert.True(t, q.DisplayedFilters["q"])
}

func TestCoordinator_ShowFilterBuildsOnPendingPayload(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts", Debounce: time.Hour})

	c.ShowFilter("q", "")
	c.ShowFilter("status", "draft")
	c.FlushFilters()

	q := c.Query()
	assert.Equal(t, Filter{"status": "draft"}, q.Filter)
	assert.True(t, q.DisplayedFilters["q"])
	assert.True(t, q.DisplayedFilters["status"])
}

func TestCoordinator_ParamsStoreSeedAndPersist(t *testing.T) {
	store := &memParams{params: map[string]Params{
		"posts": {Page: 2, PerPage: 20, Sort: "title", Order: SortDesc, Filter: Filter{"q": "x"}},
	}}
	c := newCoordinator(t, Options{Resource: "posts"}, WithParamsStore(store))

	q := c.Query()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 20, q.PerPage)
	assert.Equal(t, "title", q.Sort)

	c.SetPage(5)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 5, store.params["posts"].Page)
}

func TestCoordinator_LocationOverridesStoredParams(t *testing.T) {
	store := &memParams{params: map[string]Params{
		"posts": {Page: 2, Filter: Filter{"q": "stored"}},
	}}
	c := newCoordinator(t, Options{Resource: "posts", Location: "?page=7&sort=views&order=DESC"}, WithParamsStore(store))

	q := c.Query()
	assert.Equal(t, 7, q.Page)
	assert.Equal(t, "views", q.Sort)

	c.SyncLocation("")
	q = c.Query()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, Filter{"q": "stored"}, q.Filter)
}

func TestCoordinator_LocationReflectsDispatch(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts"})
	c.SetPage(3)

	p := Parse(c.Location())
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, "id", p.Sort)
}

func TestCoordinator_QueryStableWithoutChanges(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts"})
	a := c.Query()
	b := c.Query()
	assert.True(t, a.Signature.Equal(b.Signature))
	assert.Equal(t, a.Params, b.Params)
}

func TestCoordinator_CloseCancelsPending(t *testing.T) {
	c, err := NewCoordinator(context.Background(), Options{Resource: "posts", Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	var dispatched atomic.Int32
	c.OnChange(func(Query) { dispatched.Add(1) })

	c.SetFilters(Filter{"q": "x"}, nil)
	c.Close()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), dispatched.Load())

	c.SetPage(2)
	assert.Equal(t, int32(0), dispatched.Load())
}

func TestCoordinator_Unsubscribe(t *testing.T) {
	c := newCoordinator(t, Options{Resource: "posts"})
	var calls atomic.Int32
	unsub := c.OnChange(func(Query) { calls.Add(1) })

	c.SetPage(2)
	unsub()
	c.SetPage(3)
	assert.Equal(t, int32(1), calls.Load())
}
