package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/getzep/nlp-annotator-api/internal"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var log = internal.ComponentLogger("cache")

// Outcome of a cache lookup, reported to the Observer.
const (
	OutcomeHit    = "hit"
	OutcomeMiss   = "miss"
	OutcomeError  = "error"
	OutcomeStored = "stored"
	OutcomeSkip   = "skipped"
)

// Observer is notified of lookups and stores, e.g. to count them.
type Observer interface {
	CacheLookup(outcome string)
	CacheStore(outcome string)
}

// ComputeFunc produces the serialized response for a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Layer looks up responses by transaction id before computing them, and stores fresh
// responses when the client deadline leaves enough time for them to be reused.
type Layer struct {
	store        Store
	skew         time.Duration
	storeTimeout time.Duration
	observer     Observer
	now          func() time.Time
	wg           sync.WaitGroup
}

type LayerOption func(*Layer)

func WithObserver(o Observer) LayerOption {
	return func(l *Layer) {
		l.observer = o
	}
}

func WithClock(now func() time.Time) LayerOption {
	return func(l *Layer) {
		l.now = now
	}
}

// NewLayer wraps store. A nil store disables caching: Do always computes.
func NewLayer(store Store, skew, storeTimeout time.Duration, opts ...LayerOption) *Layer {
	l := &Layer{
		store:        store,
		skew:         skew,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do returns the cached response for the request's transaction id, or computes it.
// A store happens in the background and survives cancellation of ctx.
func (l *Layer) Do(ctx context.Context, timing models.TimingParameters, compute ComputeFunc) ([]byte, error) {
	if l.store == nil || timing.TransactionID == "" {
		return compute(ctx)
	}

	fields := logrus.Fields{"transaction_id": timing.TransactionID}

	cached, ok, err := l.store.Get(ctx, timing.TransactionID)
	switch {
	case err != nil:
		log.WithFields(fields).WithError(err).Warn("cache lookup failed, computing the response")
		l.lookup(OutcomeError)
	case ok:
		log.WithFields(fields).Debug("returning cached response")
		l.lookup(OutcomeHit)
		return cached, nil
	default:
		l.lookup(OutcomeMiss)
	}

	response, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if timing.Expired(l.now(), l.skew) {
		log.WithFields(fields).Debug("deadline too close, not caching the response")
		l.stored(OutcomeSkip)
		return response, nil
	}

	l.wg.Add(1)
	go func(ctx context.Context) {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
		defer cancel()
		if err := l.store.Set(ctx, timing.TransactionID, response); err != nil {
			log.WithFields(fields).WithError(err).Warn("failed to store response in cache")
			l.stored(OutcomeError)
			return
		}
		l.stored(OutcomeStored)
	}(context.WithoutCancel(ctx))

	return response, nil
}

// Wait blocks until every pending store has finished.
func (l *Layer) Wait() {
	l.wg.Wait()
}

func (l *Layer) Close() error {
	l.Wait()
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

func (l *Layer) lookup(outcome string) {
	if l.observer != nil {
		l.observer.CacheLookup(outcome)
	}
}

func (l *Layer) stored(outcome string) {
	if l.observer != nil {
		l.observer.CacheStore(outcome)
	}
}
