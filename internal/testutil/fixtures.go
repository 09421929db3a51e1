package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/HerbHall/adminlist/internal/dataprovider"
)

// NewRecord returns a Record with a random id and a title, suitable for
// test fixtures.
func NewRecord(opts ...func(dataprovider.Record)) dataprovider.Record {
	r := dataprovider.Record{
		"id":    uuid.New().String(),
		"title": "test record",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithID sets the record id.
func WithID(id string) func(dataprovider.Record) {
	return func(r dataprovider.Record) { r["id"] = id }
}

// WithField sets an arbitrary field.
func WithField(name string, value any) func(dataprovider.Record) {
	return func(r dataprovider.Record) { r[name] = value }
}

// NumberedRecords returns n records with ids "1".."n" and titles
// "<prefix> 1".."<prefix> n".
func NumberedRecords(prefix string, n int) []dataprovider.Record {
	out := make([]dataprovider.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, NewRecord(
			WithID(fmt.Sprint(i)),
			WithField("title", fmt.Sprintf("%s %d", prefix, i)),
			WithField("rank", i),
		))
	}
	return out
}
