// README: Flow owns one screen's estimate state and discards stale responses.
package estimate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gosnap/internal/modules/pricing"
)

type Estimating interface {
	Estimate(ctx context.Context, q Query) RouteEstimate
}

type Quoter interface {
	QuoteAll(ctx context.Context, c pricing.Catalog, distanceKm float64) ([]pricing.FareQuote, error)
}

// Flow is the Idle -> Loading -> Ready state machine of one screen instance.
// Each request is stamped with a sequence number and only the response to the
// most recently issued request is applied.
type Flow struct {
	kind      Kind
	estimator Estimating
	quoter    Quoter
	log       *zap.Logger

	mu          sync.Mutex
	issued      uint64
	snap        Snapshot
	lastKnownKm float64
	onChange    func(Snapshot)
}

func NewFlow(kind Kind, estimator Estimating, quoter Quoter, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		kind:      kind,
		estimator: estimator,
		quoter:    quoter,
		log:       log,
		snap:      Snapshot{Kind: kind, State: StateIdle},
	}
}

// OnChange registers fn to receive every applied snapshot. fn runs with the
// flow locked and must not call back into the flow.
func (f *Flow) OnChange(fn func(Snapshot)) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Request runs one estimate. It returns the resulting snapshot and whether
// it was applied; a response overtaken by a newer request is dropped and the
// current snapshot is returned instead.
func (f *Flow) Request(ctx context.Context, q Query) (Snapshot, bool) {
	seq, q := f.begin(q)

	est := f.estimator.Estimate(ctx, q)
	quotes, err := f.quoter.QuoteAll(ctx, f.kind.Catalog(), est.DistanceKm)
	if err != nil {
		f.log.Warn("quote failed", zap.Uint64("seq", seq), zap.Error(err))
		quotes = nil
	}

	return f.finish(seq, est, quotes)
}

func (f *Flow) begin(q Query) (uint64, Query) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.issued++
	q.Kind = f.kind
	if q.LastKnownKm == 0 {
		q.LastKnownKm = f.lastKnownKm
	}
	f.transition(StateLoading, f.issued)
	return f.issued, q
}

func (f *Flow) finish(seq uint64, est RouteEstimate, quotes []pricing.FareQuote) (Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.issued {
		f.log.Debug("stale estimate dropped", zap.Uint64("seq", seq), zap.Uint64("latest", f.issued))
		return f.snap, false
	}
	f.snap.Estimate = &est
	f.snap.Quotes = quotes
	if est.DistanceKm > 0 {
		f.lastKnownKm = est.DistanceKm
	}
	f.transition(StateReady, seq)
	return f.snap, true
}

// transition must be called with mu held.
func (f *Flow) transition(to State, seq uint64) {
	if !CanTransition(f.snap.State, to) {
		f.log.Error("invalid flow transition", zap.String("from", string(f.snap.State)), zap.String("to", string(to)))
		return
	}
	f.snap.State = to
	f.snap.Seq = seq
	if f.onChange != nil {
		f.onChange(f.snap)
	}
}
