package listcontroller_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listcontroller"
	"github.com/HerbHall/adminlist/internal/listparams"
	"github.com/HerbHall/adminlist/internal/navstate"
	"github.com/HerbHall/adminlist/internal/testutil"
)

func waitIdle(t *testing.T, c *listcontroller.Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func newController(t *testing.T, cfg listcontroller.Config, deps listcontroller.Deps) *listcontroller.Controller {
	t.Helper()
	if cfg.Resource == "" {
		cfg.Resource = "posts"
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = -1
	}
	if deps.Logger == nil {
		deps.Logger = testutil.Logger(t)
	}
	c, err := listcontroller.New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func seeded(n int) *testutil.StubProvider {
	p := testutil.NewStubProvider()
	p.Seed("posts", testutil.NumberedRecords("Post", n)...)
	return p
}

func TestNew_Validation(t *testing.T) {
	p := testutil.NewStubProvider()

	_, err := listcontroller.New(listcontroller.Config{}, listcontroller.Deps{Provider: p})
	assert.ErrorIs(t, err, listcontroller.ErrMissingResource)

	_, err = listcontroller.New(listcontroller.Config{Resource: "posts"}, listcontroller.Deps{})
	assert.ErrorIs(t, err, listcontroller.ErrMissingProvider)

	_, err = listcontroller.New(listcontroller.Config{
		Resource: "posts",
		Filter:   listparams.Filter{"nested": map[string]any{"fn": func() {}}},
	}, listcontroller.Deps{Provider: p})
	assert.ErrorIs(t, err, listcontroller.ErrInvalidFilter)

	_, err = listcontroller.New(listcontroller.Config{
		Resource: "posts",
		Filter:   listparams.Filter{"ch": make(chan int)},
	}, listcontroller.Deps{Provider: p})
	assert.ErrorIs(t, err, listcontroller.ErrInvalidFilter)
}

func TestController_InitialFetch(t *testing.T) {
	p := seeded(25)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	st := c.State()
	assert.Len(t, st.IDs, 10)
	require.NotNil(t, st.Total)
	assert.Equal(t, 25, *st.Total)
	assert.True(t, st.Loaded)
	assert.False(t, st.Loading)
	assert.Equal(t, "Post 1", st.Data["1"]["title"])

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dataprovider.Pagination{Page: 1, PerPage: 10}, calls[0].Pagination)
	assert.Equal(t, listparams.Sort{Field: "id", Order: listparams.SortAsc}, calls[0].Sort)
}

func TestController_FetchesOnlyWhenQueryChanges(t *testing.T) {
	p := seeded(25)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	c.SyncLocation("")
	c.SetPage(1)
	waitIdle(t, c)
	assert.Equal(t, 1, p.CallCount(), "unchanged query must not refetch")

	c.SetPage(2)
	waitIdle(t, c)
	assert.Equal(t, 2, p.CallCount())
	assert.Equal(t, []dataprovider.Identifier{"11", "12", "13", "14", "15", "16", "17", "18", "19", "20"}, c.State().IDs)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 3, p.CallCount(), "refresh always refetches")
}

func TestController_PermanentFilterAlwaysApplied(t *testing.T) {
	p := seeded(5)
	c := newController(t, listcontroller.Config{
		Filter: listparams.Filter{"published": true},
	}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	c.SetFilters(listparams.Filter{"published": false, "title": "Post 1"}, nil)
	waitIdle(t, c)

	calls := p.Calls()
	require.Len(t, calls, 2)
	for i, call := range calls {
		assert.Equal(t, true, call.Filter["published"], "call %d", i)
	}
	assert.Equal(t, "Post 1", calls[1].Filter["title"])

	v := c.View()
	assert.Equal(t, true, v.FilterValues["published"])
	_, stored := c.Query().Filter["published"]
	assert.True(t, stored, "user filter keeps its own value for the form")
}

func TestController_EmptyPageResetsToFirst(t *testing.T) {
	p := seeded(25)
	c := newController(t, listcontroller.Config{Location: "?page=5"}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	assert.Equal(t, 1, c.Query().Page)
	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 5, calls[0].Pagination.Page)
	assert.Equal(t, 1, calls[1].Pagination.Page)
	assert.Len(t, c.State().IDs, 10)
}

func TestController_PagePastLastMovesToLast(t *testing.T) {
	p := seeded(250)
	metrics := listcontroller.NewMetrics()
	c := newController(t, listcontroller.Config{
		Location:      "?page=5",
		PerPagePolicy: listparams.PerPageKeepsPage,
	}, listcontroller.Deps{Provider: p, Metrics: metrics})
	waitIdle(t, c)
	require.Equal(t, 5, c.Query().Page)

	c.SetPerPage(100)
	waitIdle(t, c)

	q := c.Query()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 100, q.PerPage)
	last := p.Calls()[p.CallCount()-1]
	assert.Equal(t, dataprovider.Pagination{Page: 3, PerPage: 100}, last.Pagination)
	assert.Len(t, c.State().IDs, 50)
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.PageCorrections.WithLabelValues("posts", "past_last")))
}

func TestController_NegativePageCorrected(t *testing.T) {
	p := seeded(5)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	c.SetPage(-3)
	waitIdle(t, c)
	assert.Equal(t, 1, c.Query().Page)
}

func TestController_FetchFailureNotifiesAndKeepsData(t *testing.T) {
	p := seeded(5)
	inbox := listcontroller.NewInbox(10)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p, Notifier: inbox})
	waitIdle(t, c)

	p.FailWith(errors.New("backend unavailable"))
	require.NoError(t, c.Refresh(context.Background()))

	st := c.State()
	assert.Len(t, st.IDs, 5, "previous data is kept")
	assert.False(t, st.Loading)
	require.Error(t, st.Error)

	notes := inbox.List()
	require.Len(t, notes, 1)
	assert.Equal(t, "backend unavailable", notes[0].Message)
	assert.Equal(t, listcontroller.LevelWarning, notes[0].Level)
	assert.Equal(t, "backend unavailable", c.View().ErrorMessage)

	p.FailWith(errors.New(""))
	require.NoError(t, c.Refresh(context.Background()))
	notes = inbox.List()
	require.Len(t, notes, 2)
	assert.Equal(t, listcontroller.FetchErrorMessage, notes[1].Message)

	p.FailWith(nil)
	require.NoError(t, c.Refresh(context.Background()))
	assert.NoError(t, c.State().Error)
}

func TestController_LatestFetchWins(t *testing.T) {
	release := make(chan struct{})
	provider := dataprovider.ProviderFunc(func(ctx context.Context, _ string, p dataprovider.GetListParams) (*dataprovider.GetListResult, error) {
		if p.Pagination.Page == 1 {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		id := dataprovider.Identifier(fmt.Sprintf("page-%d", p.Pagination.Page))
		return &dataprovider.GetListResult{
			IDs:   []dataprovider.Identifier{id},
			Data:  map[dataprovider.Identifier]dataprovider.Record{id: {"id": string(id)}},
			Total: dataprovider.IntPtr(100),
		}, nil
	})
	metrics := listcontroller.NewMetrics()
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: provider, Metrics: metrics})

	c.SetPage(2)
	require.Eventually(t, func() bool {
		ids := c.State().IDs
		return len(ids) == 1 && ids[0] == "page-2"
	}, time.Second, 5*time.Millisecond)

	close(release)
	waitIdle(t, c)

	assert.Equal(t, []dataprovider.Identifier{"page-2"}, c.State().IDs, "stale page 1 must not overwrite page 2")
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.FetchTotal.WithLabelValues("posts", "superseded")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.FetchTotal.WithLabelValues("posts", "ok")))
}

func TestController_ListsShareSequencedProvider(t *testing.T) {
	p := seeded(30)
	release := p.Block()
	shared := dataprovider.NewSequenced(p)

	a := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: shared})
	require.Eventually(t, func() bool { return p.CallCount() == 1 }, time.Second, 5*time.Millisecond)
	b := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: shared})
	require.Eventually(t, func() bool { return p.CallCount() == 2 }, time.Second, 5*time.Millisecond)

	release()
	release()
	waitIdle(t, a)
	waitIdle(t, b)

	for name, c := range map[string]*listcontroller.Controller{"a": a, "b": b} {
		st := c.State()
		assert.False(t, st.Loading, "list %s still loading", name)
		assert.True(t, st.Loaded, "list %s not loaded", name)
		assert.Len(t, st.IDs, 10, "list %s", name)
	}
}

func TestController_SupersededFetchIsReissued(t *testing.T) {
	var calls atomic.Int32
	provider := dataprovider.ProviderFunc(func(_ context.Context, _ string, _ dataprovider.GetListParams) (*dataprovider.GetListResult, error) {
		if calls.Add(1) == 1 {
			return nil, dataprovider.ErrSuperseded
		}
		return &dataprovider.GetListResult{
			IDs:   []dataprovider.Identifier{"1"},
			Data:  map[dataprovider.Identifier]dataprovider.Record{"1": {"id": "1"}},
			Total: dataprovider.IntPtr(100),
		}, nil
	})
	c := newController(t, listcontroller.Config{Location: "?page=3"}, listcontroller.Deps{Provider: provider})
	waitIdle(t, c)

	assert.Equal(t, 3, c.Query().Page, "reissuing must not reset the page")
	st := c.State()
	assert.False(t, st.Loading)
	assert.True(t, st.Loaded)
	assert.NoError(t, st.Error)
	assert.Equal(t, []dataprovider.Identifier{"1"}, st.IDs)
	assert.Equal(t, int32(2), calls.Load())
}

func TestController_SupersededRetriesAreBounded(t *testing.T) {
	var calls atomic.Int32
	provider := dataprovider.ProviderFunc(func(_ context.Context, _ string, _ dataprovider.GetListParams) (*dataprovider.GetListResult, error) {
		calls.Add(1)
		return nil, dataprovider.ErrSuperseded
	})
	inbox := listcontroller.NewInbox(10)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: provider, Notifier: inbox})
	waitIdle(t, c)

	st := c.State()
	assert.False(t, st.Loading)
	assert.ErrorIs(t, st.Error, dataprovider.ErrSuperseded)
	assert.Equal(t, int32(4), calls.Load(), "one fetch plus three reissues")
	assert.Len(t, inbox.List(), 1)
}

func TestController_ConcurrentPageChangesSettle(t *testing.T) {
	p := seeded(100)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				c.SetPage(1 + (w*7+i)%10)
			}
		}(w)
	}
	wg.Wait()
	c.SetPage(7)
	waitIdle(t, c)

	assert.Equal(t, 7, c.Query().Page)
	st := c.State()
	require.Len(t, st.IDs, 10)
	assert.Equal(t, dataprovider.Identifier("61"), st.IDs[0], "state must hold the page the query names")
	assert.Equal(t, 7, c.View().Page)
}

func TestController_PersistedStateWhileLoading(t *testing.T) {
	snap := navstate.NewMemory()
	ctx := context.Background()
	require.NoError(t, snap.SaveList(ctx, "posts", []dataprovider.Identifier{"a", "b"}, dataprovider.IntPtr(2)))

	p := testutil.NewStubProvider()
	release := p.Block()
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p, Snapshot: snap})

	st := c.State()
	assert.Equal(t, []dataprovider.Identifier{"a", "b"}, st.IDs)
	require.NotNil(t, st.Total)
	assert.Equal(t, 2, *st.Total)
	assert.True(t, st.Loaded, "persisted ids count as loaded")
	assert.True(t, st.Loading)

	release()
	waitIdle(t, c)

	st = c.State()
	assert.Empty(t, st.IDs, "a completed fetch with total 0 is not masked")
	require.NotNil(t, st.Total)
	assert.Equal(t, 0, *st.Total)
	assert.True(t, st.Loaded)
}

func TestController_ParamsStoreRoundTrip(t *testing.T) {
	store := navstate.NewMemory()
	p := seeded(30)

	first := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p, ParamsStore: store})
	waitIdle(t, first)
	first.SetSort("title", listparams.SortDesc)
	first.SetPage(2)
	waitIdle(t, first)
	first.Close()

	second := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p, ParamsStore: store})
	waitIdle(t, second)
	q := second.Query()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, "title", q.Sort)
	assert.Equal(t, listparams.SortDesc, q.Order)
}

func TestController_SelectionSharedPerResource(t *testing.T) {
	p := seeded(5)
	sel := listcontroller.NewSelections()
	a := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p, Selections: sel})
	b := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p, Selections: sel})
	other := newController(t, listcontroller.Config{Resource: "users"}, listcontroller.Deps{Provider: p, Selections: sel})

	a.Select([]dataprovider.Identifier{"1", "2", "2"})
	b.Toggle("3")
	b.Toggle("1")

	assert.Equal(t, []dataprovider.Identifier{"2", "3"}, a.Selected())
	assert.Empty(t, other.Selected())
	assert.Equal(t, []dataprovider.Identifier{"2", "3"}, b.View().SelectedIDs)

	a.ClearSelection()
	assert.Empty(t, b.Selected())
}

func TestController_ViewCarriesParams(t *testing.T) {
	p := seeded(25)
	c := newController(t, listcontroller.Config{
		Resource:            "posts",
		FilterDefaultValues: listparams.Filter{"status": "draft"},
		PerPage:             5,
	}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)

	v := c.View()
	assert.Equal(t, "posts", v.Resource)
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 5, v.PerPage)
	assert.Equal(t, "draft", v.FilterValues["status"])
	assert.Equal(t, "Posts list", v.DefaultTitle)
	assert.Equal(t, 1, v.TotalPages, "no record has a status, so nothing matches")
}

func TestController_Export(t *testing.T) {
	p := seeded(3)
	c := newController(t, listcontroller.Config{}, listcontroller.Deps{Provider: p})
	waitIdle(t, c)
	c.SetSort("rank", listparams.SortDesc)

	var buf bytes.Buffer
	require.NoError(t, c.Export(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,rank,title", lines[0])
	assert.Equal(t, "3,3,Post 3", lines[1])
	assert.Equal(t, "1,1,Post 1", lines[3])
}

func TestController_ExportKeepsPersistedPage(t *testing.T) {
	nav := navstate.NewMemory()
	p := seeded(30)
	provider := navstate.NewRecorder(p, nav, testutil.Logger(t))
	c := newController(t, listcontroller.Config{PerPage: 5}, listcontroller.Deps{Provider: provider, Snapshot: nav})
	waitIdle(t, c)

	ctx := context.Background()
	before, err := nav.Snapshot(ctx, "posts")
	require.NoError(t, err)
	require.Len(t, before.IDs, 5)

	var buf bytes.Buffer
	require.NoError(t, c.Export(ctx, &buf))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 31)

	after, err := nav.Snapshot(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, before.IDs, after.IDs)
	assert.Equal(t, 5, len(c.State().IDs))
}

func TestController_CloseCancelsFetch(t *testing.T) {
	p := testutil.NewStubProvider()
	p.Block()
	inbox := listcontroller.NewInbox(10)
	c, err := listcontroller.New(listcontroller.Config{Resource: "posts"}, listcontroller.Deps{Provider: p, Notifier: inbox})
	require.NoError(t, err)

	c.Close()
	waitIdle(t, c)
	assert.Empty(t, inbox.List(), "cancelled fetches are not reported")
}

func TestDefaultTitle(t *testing.T) {
	tests := map[string]string{
		"posts":      "Posts list",
		"blog_posts": "Blog posts list",
		"user-roles": "User roles list",
	}
	for in, want := range tests {
		if got := listcontroller.DefaultTitle(in); got != want {
			t.Errorf("DefaultTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
