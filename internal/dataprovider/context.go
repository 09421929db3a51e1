package dataprovider

import "context"

type ctxKey int

const (
	callerKey ctxKey = iota
	bulkKey
)

// WithCaller tags ctx with the identity of the list issuing the request.
// Sequenced orders requests per caller, so two lists on the same resource do
// not cancel each other out.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the caller set by WithCaller, or "".
func CallerFrom(ctx context.Context) string {
	s, _ := ctx.Value(callerKey).(string)
	return s
}

// WithBulk marks requests made on ctx as bulk reads (export) rather than the
// page a list displays. Decorators that track the displayed page skip them.
func WithBulk(ctx context.Context) context.Context {
	return context.WithValue(ctx, bulkKey, true)
}

// IsBulk reports whether ctx was marked by WithBulk.
func IsBulk(ctx context.Context) bool {
	b, _ := ctx.Value(bulkKey).(bool)
	return b
}
