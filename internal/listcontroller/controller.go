// Package listcontroller drives one record list: it turns the list params
// into data-provider fetches, keeps the last good page visible while a new
// one loads, pulls the page back into range when the data shrinks, and
// exposes everything a list view needs to render.
package listcontroller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listparams"
	"github.com/HerbHall/adminlist/internal/navstate"
)

// Construction errors.
var (
	ErrMissingResource = errors.New("list controller: resource is required")
	ErrMissingProvider = errors.New("list controller: data provider is required")
	ErrInvalidFilter   = errors.New("list controller: filter values must be plain data")
)

// recordCacheSize bounds the records kept to render persisted ids.
const recordCacheSize = 1000

// maxSupersededRetries bounds how often a fetch superseded by another request
// of the same caller is reissued before the list reports the error.
const maxSupersededRetries = 3

// Config describes one list.
type Config struct {
	Resource string
	// Filter is always applied on top of the user's filter and is never
	// shown in the filter form.
	Filter              listparams.Filter
	FilterDefaultValues listparams.Filter
	PerPage             int
	Sort                listparams.Sort
	Debounce            time.Duration
	PerPagePolicy       listparams.PerPagePolicy
	// Location is the raw query string the list was opened with.
	Location string
	// Exporter defaults to CSVExporter.
	Exporter Exporter
	// FetchTimeout bounds each provider call. Zero means no timeout.
	FetchTimeout time.Duration
}

// Deps are the collaborators of a Controller. Only Provider is required.
type Deps struct {
	Provider    dataprovider.Provider
	Snapshot    navstate.Reader
	ParamsStore listparams.ParamsStore
	Notifier    Notifier
	Selections  *Selections
	Metrics     *Metrics
	Logger      *zap.Logger
}

// State is the data side of a list.
type State struct {
	IDs     []dataprovider.Identifier                       `json:"ids"`
	Data    map[dataprovider.Identifier]dataprovider.Record `json:"data"`
	Total   *int                                            `json:"total,omitempty"`
	Loading bool                                            `json:"loading"`
	Loaded  bool                                            `json:"loaded"`
	Error   error                                           `json:"-"`
}

// View is everything needed to render a list.
type View struct {
	State
	ErrorMessage     string                    `json:"error,omitempty"`
	Resource         string                    `json:"resource"`
	Page             int                       `json:"page"`
	PerPage          int                       `json:"perPage"`
	CurrentSort      listparams.Sort           `json:"currentSort"`
	FilterValues     listparams.Filter         `json:"filterValues"`
	DisplayedFilters map[string]bool           `json:"displayedFilters"`
	SelectedIDs      []dataprovider.Identifier `json:"selectedIds"`
	TotalPages       int                       `json:"totalPages"`
	DefaultTitle     string                    `json:"defaultTitle"`
	Location         string                    `json:"location"`
	HasPendingFilter bool                      `json:"hasPendingFilter"`
}

// Controller is the list-data controller of one list instance. All methods
// are safe for concurrent use.
type Controller struct {
	cfg        Config
	provider   dataprovider.Provider
	snapshot   navstate.Reader
	notifier   Notifier
	selections *Selections
	metrics    *Metrics
	logger     *zap.Logger
	exporter   Exporter
	records    *lru.Cache[dataprovider.Identifier, dataprovider.Record]
	coord      *listparams.Coordinator

	id        string
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.Mutex
	state    State
	lastKey  string
	seq      uint64
	inflight int
	idle     chan struct{}
	closed   bool
	retries  int
}

// New builds a Controller and starts the first fetch.
func New(cfg Config, deps Deps) (*Controller, error) {
	if cfg.Resource == "" {
		return nil, ErrMissingResource
	}
	if deps.Provider == nil {
		return nil, ErrMissingProvider
	}
	if err := validateFilter(cfg.Filter); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("controller").With(zap.String("resource", cfg.Resource))

	c := &Controller{
		cfg:        cfg,
		provider:   deps.Provider,
		snapshot:   deps.Snapshot,
		notifier:   deps.Notifier,
		selections: deps.Selections,
		metrics:    deps.Metrics,
		logger:     logger,
		exporter:   cfg.Exporter,
	}
	if c.notifier == nil {
		c.notifier = NewLogNotifier(logger)
	}
	if c.selections == nil {
		c.selections = NewSelections()
	}
	if c.exporter == nil {
		c.exporter = CSVExporter{}
	}
	records, err := lru.New[dataprovider.Identifier, dataprovider.Record](recordCacheSize)
	if err != nil {
		return nil, fmt.Errorf("record cache: %w", err)
	}
	c.records = records
	c.id = uuid.NewString()
	c.ctx, c.cancel = context.WithCancel(dataprovider.WithCaller(context.Background(), c.id))

	opts := []listparams.CoordinatorOption{
		listparams.WithLogger(logger),
		listparams.WithOnChange(func(listparams.Query) { c.reconcile() }),
	}
	if deps.ParamsStore != nil {
		opts = append(opts, listparams.WithParamsStore(deps.ParamsStore))
	}
	coord, err := listparams.NewCoordinator(c.ctx, listparams.Options{
		Resource:            cfg.Resource,
		FilterDefaultValues: cfg.FilterDefaultValues,
		Filter:              cfg.Filter,
		Sort:                cfg.Sort,
		PerPage:             cfg.PerPage,
		Debounce:            cfg.Debounce,
		PerPagePolicy:       cfg.PerPagePolicy,
		Location:            cfg.Location,
	}, opts...)
	if err != nil {
		c.cancel()
		return nil, err
	}
	c.coord = coord

	c.metrics.listOpened()
	c.mu.Lock()
	c.startFetchLocked(coord.Query())
	c.mu.Unlock()
	return c, nil
}

// Resource returns the resource of the list.
func (c *Controller) Resource() string { return c.cfg.Resource }

// Query returns the effective list params.
func (c *Controller) Query() listparams.Query { return c.coord.Query() }

// Location returns the query string describing the current params.
func (c *Controller) Location() string { return c.coord.Location() }

// SetPage moves to page.
func (c *Controller) SetPage(page int) { c.coord.SetPage(page) }

// SetPerPage changes the page size.
func (c *Controller) SetPerPage(perPage int) { c.coord.SetPerPage(perPage) }

// SetSort sorts by field. An empty order on the current field toggles it.
func (c *Controller) SetSort(field string, order listparams.Order) { c.coord.SetSort(field, order) }

// SetFilters replaces the user filter after the debounce delay.
func (c *Controller) SetFilters(filter listparams.Filter, displayed map[string]bool) {
	c.coord.SetFilters(filter, displayed)
}

// FlushFilters applies a pending SetFilters immediately.
func (c *Controller) FlushFilters() { c.coord.FlushFilters() }

// ShowFilter displays the filter control name with an initial value.
func (c *Controller) ShowFilter(name string, defaultValue any) { c.coord.ShowFilter(name, defaultValue) }

// HideFilter hides the filter control name and drops its value.
func (c *Controller) HideFilter(name string) { c.coord.HideFilter(name) }

// SyncLocation applies a new URL query string.
func (c *Controller) SyncLocation(search string) { c.coord.SyncLocation(search) }

// ChangeParams dispatches a raw params action.
func (c *Controller) ChangeParams(a listparams.Action) { c.coord.ChangeParams(a) }

// Select replaces the selection of the list's resource.
func (c *Controller) Select(ids []dataprovider.Identifier) { c.selections.Select(c.cfg.Resource, ids) }

// Toggle flips the selection of one record.
func (c *Controller) Toggle(id dataprovider.Identifier) { c.selections.Toggle(c.cfg.Resource, id) }

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() { c.selections.Clear(c.cfg.Resource) }

// Selected returns the selected ids.
func (c *Controller) Selected() []dataprovider.Identifier { return c.selections.Selected(c.cfg.Resource) }

// State returns the current list state, filled from the persisted state
// until the first fetch reports a total.
func (c *Controller) State() State {
	persisted := c.persisted()

	c.mu.Lock()
	defer c.mu.Unlock()
	st := EffectiveListState(c.state, persisted)
	st.IDs = append([]dataprovider.Identifier{}, st.IDs...)
	data := make(map[dataprovider.Identifier]dataprovider.Record, len(st.IDs))
	for _, id := range st.IDs {
		if rec, ok := c.state.Data[id]; ok {
			data[id] = rec
		} else if rec, ok := c.records.Peek(id); ok {
			data[id] = rec
		}
	}
	st.Data = data
	if st.Total != nil {
		st.Total = dataprovider.IntPtr(*st.Total)
	}
	return st
}

// View returns the full render state of the list.
func (c *Controller) View() View {
	st := c.State()
	q := c.coord.Query()

	v := View{
		State:            st,
		Resource:         c.cfg.Resource,
		Page:             q.Page,
		PerPage:          q.PerPage,
		CurrentSort:      listparams.Sort{Field: q.Sort, Order: q.Order},
		FilterValues:     q.FilterValues,
		DisplayedFilters: q.DisplayedFilters,
		SelectedIDs:      c.Selected(),
		TotalPages:       1,
		DefaultTitle:     DefaultTitle(c.cfg.Resource),
		Location:         c.coord.Location(),
		HasPendingFilter: c.coord.HasPendingFilters(),
	}
	if st.Total != nil {
		v.TotalPages = TotalPages(*st.Total, q.PerPage)
	}
	if st.Error != nil {
		v.ErrorMessage = errorMessage(st.Error)
	}
	if v.FilterValues == nil {
		v.FilterValues = listparams.Filter{}
	}
	if v.DisplayedFilters == nil {
		v.DisplayedFilters = map[string]bool{}
	}
	return v
}

// Wait blocks until no fetch is in flight or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		idle := c.idle
		c.mu.Unlock()
		if idle == nil {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Refresh refetches the current page even though the params did not change,
// and waits for the result.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.startFetchLocked(c.coord.Query())
	c.mu.Unlock()
	return c.Wait(ctx)
}

// Export fetches every record matching the current filter and sort, ignoring
// pagination, and writes them with the configured Exporter.
func (c *Controller) Export(ctx context.Context, w io.Writer) error {
	q := c.coord.Query()
	ctx = dataprovider.WithBulk(dataprovider.WithCaller(ctx, c.id+"/export"))
	var all []dataprovider.Record
	for page := 1; ; page++ {
		params := request(q)
		params.Pagination = dataprovider.Pagination{Page: page, PerPage: ExportPageSize}
		res, err := c.provider.GetList(ctx, c.cfg.Resource, params)
		if err != nil {
			return fmt.Errorf("export %s page %d: %w", c.cfg.Resource, page, err)
		}
		all = append(all, res.Records()...)
		if len(res.IDs) < ExportPageSize {
			break
		}
		if res.Total != nil && len(all) >= *res.Total {
			break
		}
	}
	c.logger.Debug("exporting records", zap.Int("count", len(all)))
	return c.exporter.Export(ctx, c.cfg.Resource, all, w)
}

// Close stops the controller. Pending filter changes are dropped and
// in-flight fetches are cancelled.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.coord.Close()
		c.cancel()
		c.metrics.listClosed()
	})
}

// reconcile runs after every params change and fetch completion: it corrects
// an out-of-range page, or starts a fetch when the provider request changed.
func (c *Controller) reconcile() {
	if c.coord == nil {
		return
	}
	persisted := c.persisted()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	// Read under c.mu so a reconcile holding an older query cannot start a
	// fetch after one for a newer query.
	q := c.coord.Query()
	eff := EffectiveListState(c.state, persisted)
	corrected := CorrectPage(q.Page, q.PerPage, c.state.Loading, eff.IDs, eff.Total)
	if corrected != q.Page {
		c.mu.Unlock()
		c.logger.Debug("correcting page",
			zap.Int("page", q.Page),
			zap.Int("corrected", corrected),
		)
		c.metrics.pageCorrected(c.cfg.Resource, correctionReason(q.Page, corrected))
		c.coord.SetPage(corrected)
		return
	}
	if requestKey(request(q)) != c.lastKey {
		c.startFetchLocked(q)
	}
	c.mu.Unlock()
}

// request builds the provider request of a query. The permanent filter is
// already merged into FilterValues.
func request(q listparams.Query) dataprovider.GetListParams {
	return dataprovider.GetListParams{
		Pagination: dataprovider.Pagination{Page: q.Page, PerPage: q.PerPage},
		Sort:       listparams.Sort{Field: q.Sort, Order: q.Order},
		Filter:     q.FilterValues,
	}
}

// requestKey identifies a provider request. Two queries whose signatures
// differ but which ask the provider for the same page share a key.
func requestKey(p dataprovider.GetListParams) string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%v", p)
	}
	return string(b)
}

func (c *Controller) startFetchLocked(q listparams.Query) {
	params := request(q)
	c.seq++
	c.lastKey = requestKey(params)
	c.state.Loading = true
	if c.inflight == 0 {
		c.idle = make(chan struct{})
	}
	c.inflight++
	go c.fetch(c.seq, params)
}

func (c *Controller) fetch(seq uint64, params dataprovider.GetListParams) {
	defer c.fetchDone()

	ctx := c.ctx
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := c.provider.GetList(ctx, c.cfg.Resource, params)
	elapsed := time.Since(start)
	if err == nil && res == nil {
		res = &dataprovider.GetListResult{}
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.metrics.fetchDone(c.cfg.Resource, fetchSuperseded, elapsed)
		return
	}
	if errors.Is(err, dataprovider.ErrSuperseded) && c.retries < maxSupersededRetries && !c.closed {
		// The latest request lost to one issued elsewhere with the same
		// caller; ask again instead of staying in the loading state.
		c.retries++
		c.startFetchLocked(c.coord.Query())
		c.mu.Unlock()
		c.metrics.fetchDone(c.cfg.Resource, fetchSuperseded, elapsed)
		return
	}
	c.retries = 0
	if err != nil {
		c.state.Loading = false
		c.state.Error = err
		closed := c.closed
		c.mu.Unlock()
		c.metrics.fetchDone(c.cfg.Resource, fetchError, elapsed)
		if closed {
			return
		}
		c.logger.Warn("fetch failed",
			zap.Int("page", params.Pagination.Page),
			zap.Error(err),
		)
		c.notifier.Notify(errorMessage(err), LevelWarning)
		return
	}

	c.state = State{
		IDs:     append([]dataprovider.Identifier{}, res.IDs...),
		Data:    make(map[dataprovider.Identifier]dataprovider.Record, len(res.Data)),
		Total:   res.Total,
		Loading: false,
		Loaded:  true,
	}
	for id, rec := range res.Data {
		c.state.Data[id] = rec
		c.records.Add(id, rec)
	}
	c.mu.Unlock()

	c.metrics.fetchDone(c.cfg.Resource, fetchOK, elapsed)
	c.logger.Debug("fetch completed",
		zap.Int("page", params.Pagination.Page),
		zap.Int("count", len(res.IDs)),
		zap.Duration("elapsed", elapsed),
	)
	c.reconcile()
}

func (c *Controller) fetchDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.inflight == 0 && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

func (c *Controller) persisted() navstate.ListState {
	if c.snapshot == nil {
		return navstate.ListState{}
	}
	st, err := c.snapshot.Snapshot(c.ctx, c.cfg.Resource)
	if err != nil {
		if !errors.Is(err, navstate.ErrNotFound) && !errors.Is(err, context.Canceled) {
			c.logger.Warn("failed to read navigation state", zap.Error(err))
		}
		return navstate.ListState{}
	}
	return st
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FetchErrorMessage
}

// DefaultTitle returns the default page title of a resource list, e.g.
// "Blog posts list" for "blog_posts".
func DefaultTitle(resource string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(resource)
	runes := []rune(name)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes) + " list"
}

// validateFilter rejects values that cannot be serialized or compared, such
// as functions and channels, anywhere in f.
func validateFilter(f listparams.Filter) error {
	for k, v := range f {
		if err := validateValue(k, reflect.ValueOf(v)); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(path string, v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("%w: %q has kind %s", ErrInvalidFilter, path, v.Kind())
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return validateValue(path, v.Elem())
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(fmt.Sprintf("%s.%v", path, iter.Key()), iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), v.Index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}
