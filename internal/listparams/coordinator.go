package listparams

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/romdo/go-debounce"
	"go.uber.org/zap"
)

// ParamsStore persists the last dispatched params of each resource so a list
// opened again later resumes where the user left it.
type ParamsStore interface {
	LoadParams(ctx context.Context, resource string) (Params, bool, error)
	SaveParams(ctx context.Context, resource string, p Params) error
}

// Options configures a Coordinator.
type Options struct {
	Resource string
	// FilterDefaultValues is the filter used until the user picks one.
	FilterDefaultValues Filter
	// Filter is merged over the user's filter and always wins.
	Filter  Filter
	Sort    Sort
	PerPage int
	// Debounce delays SetFilters. Zero means DefaultDebounce; a negative
	// value dispatches immediately.
	Debounce      time.Duration
	PerPagePolicy PerPagePolicy
	// Location is the raw URL query string the list was opened with.
	Location string
}

func (o Options) withDefaults() Options {
	if o.Sort.Field == "" {
		o.Sort = DefaultSort
	}
	if !o.Sort.Order.Valid() {
		o.Sort.Order = SortAsc
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.Debounce == 0 {
		o.Debounce = DefaultDebounce
	}
	return o
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithParamsStore seeds the coordinator from, and persists every dispatch to, s.
func WithParamsStore(s ParamsStore) CoordinatorOption {
	return func(c *Coordinator) { c.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnChange registers fn as a change listener from the start.
func WithOnChange(fn func(Query)) CoordinatorOption {
	return func(c *Coordinator) { c.listeners[c.nextListener] = fn; c.nextListener++ }
}

type pendingFilters struct {
	filter    Filter
	displayed map[string]bool
}

// Coordinator owns the params of one list instance. All methods are safe for
// concurrent use; modifiers are plain methods and therefore stable for the
// coordinator's lifetime.
type Coordinator struct {
	opts   Options
	store  ParamsStore
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	params   Params
	location Params
	query    Query
	queryKey string
	pending  *pendingFilters
	closed   bool

	listeners    map[int]func(Query)
	nextListener int

	debounced      func()
	cancelDebounce func()
}

// NewCoordinator builds a Coordinator. When a ParamsStore is configured, the
// last params stored for the resource are loaded as the starting point.
func NewCoordinator(ctx context.Context, opts Options, options ...CoordinatorOption) (*Coordinator, error) {
	if opts.Resource == "" {
		return nil, ErrMissingResource
	}
	opts = opts.withDefaults()

	c := &Coordinator{
		opts:      opts,
		logger:    zap.NewNop(),
		listeners: make(map[int]func(Query)),
		location:  Parse(opts.Location),
	}
	for _, o := range options {
		o(c)
	}
	c.logger = c.logger.With(zap.String("resource", opts.Resource))
	c.ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))

	if c.store != nil {
		p, ok, err := c.store.LoadParams(ctx, opts.Resource)
		if err != nil {
			c.cancel()
			return nil, fmt.Errorf("load params for %q: %w", opts.Resource, err)
		}
		if ok {
			c.params = p
		}
	}

	if opts.Debounce > 0 {
		c.debounced, c.cancelDebounce = debounce.New(opts.Debounce, c.flushPending)
	}

	c.mu.Lock()
	c.refreshLocked()
	c.mu.Unlock()
	return c, nil
}

// Resource returns the resource the coordinator manages.
func (c *Coordinator) Resource() string { return c.opts.Resource }

// Options returns the effective options, defaults applied.
func (c *Coordinator) Options() Options { return c.opts }

// Query returns the effective query. It is recomputed only when the request
// signature changes.
func (c *Coordinator) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
	return copyQuery(c.query)
}

// Params returns the raw stored params (before defaults are applied).
func (c *Coordinator) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Clone()
}

// Location returns the current query encoded as a URL query string.
func (c *Coordinator) Location() string {
	return Encode(c.Query().Params)
}

// SyncLocation replaces the URL-derived params. A search string without any
// list keys clears them, letting stored params and defaults apply again.
func (c *Coordinator) SyncLocation(search string) {
	c.mu.Lock()
	before := c.queryKey
	c.location = Parse(search)
	c.refreshLocked()
	changed := before != c.queryKey
	q := copyQuery(c.query)
	listeners := c.listenersLocked()
	c.mu.Unlock()

	if changed {
		notify(listeners, q)
	}
}

// OnChange registers fn to be called with the new query after every
// dispatch. The returned function unregisters it.
func (c *Coordinator) OnChange(fn func(Query)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// ChangeParams applies a to the current query and stores the result.
func (c *Coordinator) ChangeParams(a Action) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.refreshLocked()
	next := Reduce(c.query.Params, a, ReducerOptions{PerPagePolicy: c.opts.PerPagePolicy})
	c.params = next
	// The new params become the URL state as well.
	c.location = Params{}
	c.refreshLocked()
	q := copyQuery(c.query)
	listeners := c.listenersLocked()
	c.mu.Unlock()

	c.logger.Debug("list params changed",
		zap.String("action", string(a.Type)),
		zap.Int("page", q.Page),
		zap.Int("per_page", q.PerPage),
		zap.String("sort", q.Sort),
		zap.String("order", string(q.Order)),
	)

	if c.store != nil {
		if err := c.store.SaveParams(c.ctx, c.opts.Resource, next); err != nil {
			c.logger.Warn("failed to persist list params", zap.Error(err))
		}
	}
	notify(listeners, q)
}

// SetPage moves to page.
func (c *Coordinator) SetPage(page int) { c.ChangeParams(SetPage(page)) }

// SetPerPage changes the page size.
func (c *Coordinator) SetPerPage(perPage int) { c.ChangeParams(SetPerPage(perPage)) }

// SetSort sorts by field. An empty order toggles the direction when field is
// already the sort field.
func (c *Coordinator) SetSort(field string, order Order) { c.ChangeParams(SetSort(field, order)) }

// SetFilters schedules a filter change. Calls within the debounce window
// replace each other; only the last one is dispatched. A nil displayed map
// keeps the current filter visibility.
func (c *Coordinator) SetFilters(filter Filter, displayed map[string]bool) {
	p := &pendingFilters{filter: RemoveEmpty(filter)}
	if displayed != nil {
		p.displayed = make(map[string]bool, len(displayed))
		for k, v := range displayed {
			if v {
				p.displayed[k] = true
			}
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = p
	c.mu.Unlock()

	if c.debounced == nil {
		c.flushPending()
		return
	}
	c.debounced()
}

// FlushFilters dispatches a pending SetFilters call right away.
func (c *Coordinator) FlushFilters() {
	c.flushPending()
}

// HasPendingFilters reports whether a SetFilters call is waiting on the debounce timer.
func (c *Coordinator) HasPendingFilters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// HideFilter removes the filter at the dotted path name and hides its control.
func (c *Coordinator) HideFilter(name string) {
	filter, displayed := c.currentFilters()
	delete(displayed, name)
	c.SetFilters(RemovePath(filter, name), displayed)
}

// ShowFilter sets the filter at the dotted path name to defaultValue and
// shows its control.
func (c *Coordinator) ShowFilter(name string, defaultValue any) {
	filter, displayed := c.currentFilters()
	displayed[name] = true
	c.SetFilters(SetPath(filter, name, defaultValue), displayed)
}

// Close cancels any pending filter change. The coordinator ignores further
// modifier calls.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = nil
	c.mu.Unlock()

	if c.cancelDebounce != nil {
		c.cancelDebounce()
	}
	c.cancel()
}

// currentFilters returns the user filter and visibility map that the next
// filter change builds on: the pending payload if one is waiting, otherwise
// the current query.
func (c *Coordinator) currentFilters() (Filter, map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()

	filter := c.query.Filter
	displayed := c.query.DisplayedFilters
	if c.pending != nil {
		filter = c.pending.filter
		if c.pending.displayed != nil {
			displayed = c.pending.displayed
		}
	}

	out := make(map[string]bool, len(displayed))
	for k, v := range displayed {
		out[k] = v
	}
	return cloneFilter(filter), out
}

func (c *Coordinator) flushPending() {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.mu.Unlock()

	if p == nil {
		return
	}
	c.ChangeParams(SetFilter(p.filter, p.displayed))
}

// refreshLocked recomputes the query when the signature changed.
func (c *Coordinator) refreshLocked() {
	sig := NewSignature(c.opts.Resource, c.location, c.params, c.opts.FilterDefaultValues, c.opts.Sort, c.opts.PerPage)
	key := sig.Key()
	if key == c.queryKey {
		return
	}

	p := GetQuery(QueryInput{
		Location:            c.location,
		Params:              c.params,
		FilterDefaultValues: c.opts.FilterDefaultValues,
		Sort:                c.opts.Sort,
		PerPage:             c.opts.PerPage,
	})
	if p.DisplayedFilters == nil {
		p.DisplayedFilters = map[string]bool{}
	}
	c.query = Query{
		Params:       p,
		FilterValues: MergeFilters(p.Filter, c.opts.Filter),
		Signature:    sig,
	}
	c.queryKey = key
}

func (c *Coordinator) listenersLocked() []func(Query) {
	out := make([]func(Query), 0, len(c.listeners))
	for i := 0; i < c.nextListener; i++ {
		if fn, ok := c.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(Query), q Query) {
	for _, fn := range listeners {
		fn(copyQuery(q))
	}
}

func copyQuery(q Query) Query {
	return Query{
		Params:       q.Params.Clone(),
		FilterValues: cloneFilter(q.FilterValues),
		Signature:    q.Signature,
	}
}
