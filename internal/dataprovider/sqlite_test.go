package dataprovider_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listparams"
	"github.com/HerbHall/adminlist/internal/testutil"
)

func newProvider(t *testing.T) *dataprovider.SQLiteProvider {
	t.Helper()
	p, err := dataprovider.NewSQLiteProvider(context.Background(), testutil.NewStore(t))
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	return p
}

func seedPosts(t *testing.T, p *dataprovider.SQLiteProvider, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		rec := testutil.NewRecord(
			testutil.WithID(fmt.Sprintf("%03d", i)),
			testutil.WithField("title", fmt.Sprintf("Post %02d", i)),
			testutil.WithField("views", i*10),
			testutil.WithField("published", i%2 == 0),
			testutil.WithField("author", map[string]any{"name": fmt.Sprintf("author-%d", i%3)}),
		)
		if _, err := p.Create(ctx, "posts", rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
}

func TestSQLiteProvider_PaginationAndTotal(t *testing.T) {
	p := newProvider(t)
	seedPosts(t, p, 25)

	res, err := p.GetList(context.Background(), "posts", dataprovider.GetListParams{
		Pagination: dataprovider.Pagination{Page: 3, PerPage: 10},
		Sort:       listparams.Sort{Field: "id", Order: listparams.SortAsc},
	})
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if res.Total == nil || *res.Total != 25 {
		t.Fatalf("Total = %v, want 25", res.Total)
	}
	if len(res.IDs) != 5 {
		t.Fatalf("len(IDs) = %d, want 5", len(res.IDs))
	}
	if res.IDs[0] != "021" {
		t.Errorf("IDs[0] = %q, want 021", res.IDs[0])
	}
	if res.Data["021"]["title"] != "Post 21" {
		t.Errorf("Data[021].title = %v, want Post 21", res.Data["021"]["title"])
	}
}

func TestSQLiteProvider_SortByJSONField(t *testing.T) {
	p := newProvider(t)
	seedPosts(t, p, 5)

	res, err := p.GetList(context.Background(), "posts", dataprovider.GetListParams{
		Pagination: dataprovider.Pagination{Page: 1, PerPage: 10},
		Sort:       listparams.Sort{Field: "views", Order: listparams.SortDesc},
	})
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	want := []dataprovider.Identifier{"005", "004", "003", "002", "001"}
	for i, id := range want {
		if res.IDs[i] != id {
			t.Errorf("IDs[%d] = %q, want %q", i, res.IDs[i], id)
		}
	}
}

func TestSQLiteProvider_Filters(t *testing.T) {
	p := newProvider(t)
	seedPosts(t, p, 10)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter listparams.Filter
		want   int
	}{
		{name: "equality bool", filter: listparams.Filter{"published": true}, want: 5},
		{name: "search", filter: listparams.Filter{"q": "Post 0"}, want: 9},
		{name: "in list", filter: listparams.Filter{"id": []any{"001", "002", "999"}}, want: 2},
		{name: "gte", filter: listparams.Filter{"views_gte": 80}, want: 3},
		{name: "nested path", filter: listparams.Filter{"author": map[string]any{"name": "author-0"}}, want: 3},
		{name: "dotted key", filter: listparams.Filter{"author.name": "author-1"}, want: 4},
		{name: "combined", filter: listparams.Filter{"published": true, "views_lte": 40}, want: 2},
		{name: "nil ignored", filter: listparams.Filter{"published": nil}, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.GetList(ctx, "posts", dataprovider.GetListParams{
				Pagination: dataprovider.Pagination{Page: 1, PerPage: 100},
				Filter:     tt.filter,
			})
			if err != nil {
				t.Fatalf("GetList: %v", err)
			}
			if *res.Total != tt.want {
				t.Errorf("Total = %d, want %d", *res.Total, tt.want)
			}
		})
	}
}

func TestSQLiteProvider_ResourcesIsolated(t *testing.T) {
	p := newProvider(t)
	seedPosts(t, p, 3)
	if _, err := p.Create(context.Background(), "users", testutil.NewRecord()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := p.GetList(context.Background(), "users", dataprovider.GetListParams{})
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if *res.Total != 1 {
		t.Errorf("Total = %d, want 1", *res.Total)
	}
}

func TestSQLiteProvider_RejectsInvalidFields(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	_, err := p.GetList(ctx, "posts", dataprovider.GetListParams{
		Sort: listparams.Sort{Field: "title; DROP TABLE dp_records", Order: listparams.SortAsc},
	})
	if !errors.Is(err, dataprovider.ErrInvalidField) {
		t.Errorf("sort error = %v, want ErrInvalidField", err)
	}

	_, err = p.GetList(ctx, "posts", dataprovider.GetListParams{
		Filter: listparams.Filter{"a'b": 1},
	})
	if !errors.Is(err, dataprovider.ErrInvalidField) {
		t.Errorf("filter error = %v, want ErrInvalidField", err)
	}
}

func TestSQLiteProvider_CreateGetDelete(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	id, err := p.Create(ctx, "posts", dataprovider.Record{"title": "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create did not generate an ID")
	}

	rec, err := p.Get(ctx, "posts", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec["title"] != "hello" {
		t.Errorf("title = %v, want hello", rec["title"])
	}

	if err := p.Delete(ctx, "posts", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := p.Get(ctx, "posts", id); !errors.Is(err, dataprovider.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := p.Delete(ctx, "posts", id); !errors.Is(err, dataprovider.ErrNotFound) {
		t.Errorf("Delete twice = %v, want ErrNotFound", err)
	}
}
