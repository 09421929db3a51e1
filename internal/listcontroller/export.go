package listcontroller

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cast"

	"github.com/HerbHall/adminlist/internal/dataprovider"
)

// ExportPageSize is the page size used to walk a resource during export.
const ExportPageSize = 1000

// Exporter writes a set of records to w.
type Exporter interface {
	Export(ctx context.Context, resource string, records []dataprovider.Record, w io.Writer) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context, resource string, records []dataprovider.Record, w io.Writer) error

// Export calls f.
func (f ExporterFunc) Export(ctx context.Context, resource string, records []dataprovider.Record, w io.Writer) error {
	return f(ctx, resource, records, w)
}

// CSVExporter writes records as CSV with a header row. Nested values are
// written as JSON.
type CSVExporter struct {
	// Fields selects and orders the columns. When empty, every field seen in
	// the records is exported, "id" first and the rest sorted.
	Fields []string
}

// Export writes records to w.
func (e CSVExporter) Export(ctx context.Context, _ string, records []dataprovider.Record, w io.Writer) error {
	fields := e.Fields
	if len(fields) == 0 {
		fields = collectFields(records)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(fields))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, f := range fields {
			row[i] = csvValue(rec[f])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func collectFields(records []dataprovider.Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	_, hasID := seen["id"]
	delete(seen, "id")
	fields := make([]string, 0, len(seen)+1)
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	if hasID {
		fields = append([]string{"id"}, fields...)
	}
	return fields
}

func csvValue(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return cast.ToString(v)
	}
}
