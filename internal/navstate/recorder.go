package navstate

import (
	"context"

	"go.uber.org/zap"

	"github.com/HerbHall/adminlist/internal/dataprovider"
)

// Recorder is a Provider decorator that saves the ids and total of every
// successful fetch that reports a total. Bulk reads (dataprovider.WithBulk)
// are passed through unrecorded.
type Recorder struct {
	next   dataprovider.Provider
	store  Store
	logger *zap.Logger
}

// NewRecorder wraps next so its results are written to store.
func NewRecorder(next dataprovider.Provider, store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{next: next, store: store, logger: logger}
}

// GetList delegates to the wrapped provider. A failure to record state is
// logged and does not fail the fetch.
func (r *Recorder) GetList(ctx context.Context, resource string, params dataprovider.GetListParams) (*dataprovider.GetListResult, error) {
	res, err := r.next.GetList(ctx, resource, params)
	if err != nil || res == nil || res.Total == nil || dataprovider.IsBulk(ctx) {
		return res, err
	}
	if serr := r.store.SaveList(ctx, resource, res.IDs, res.Total); serr != nil {
		r.logger.Warn("failed to record navigation state",
			zap.String("resource", resource),
			zap.Error(serr),
		)
	}
	return res, nil
}
