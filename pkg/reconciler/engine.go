// Package reconciler implements the cooperative, single-goroutine event
// loop that watches the store, debounces structural changes into a single
// matchmaker pass, and propagates property writes directly (§3-§5).
package reconciler

import (
	"context"
	"errors"
	"time"

	"github.com/cnscp/cns-orchestrator/pkg/cache"
	"github.com/cnscp/cns-orchestrator/pkg/keyspace"
	"github.com/cnscp/cns-orchestrator/pkg/log"
	"github.com/cnscp/cns-orchestrator/pkg/orcherr"
	"github.com/cnscp/cns-orchestrator/pkg/store"
)

// DebounceDelay is the default re-arm window between a structural change
// and the build() it triggers (§4.4).
const DebounceDelay = 1000 * time.Millisecond

// Engine owns the store connection, the cache mirror, and the debounce
// timer. Every method that touches store or cache state runs on the single
// goroutine inside Run, so two build() passes can never overlap (§5, I5).
type Engine struct {
	store         store.Client
	cache         *cache.Cache
	debounceDelay time.Duration
}

// New creates an Engine with the default debounce delay.
func New(client store.Client, c *cache.Cache) *Engine {
	return &Engine{store: client, cache: c, debounceDelay: DebounceDelay}
}

// WithDebounceDelay overrides the debounce window — used by tests that
// cannot afford to wait a full second per scenario.
func (e *Engine) WithDebounceDelay(d time.Duration) *Engine {
	e.debounceDelay = d
	return e
}

// Run loads the initial cache, starts watching, and processes events and
// debounce expirations until ctx is cancelled or the watch stream fails.
func (e *Engine) Run(ctx context.Context) error {
	all, err := e.store.All(ctx, keyspace.Root)
	if err != nil {
		return err
	}
	e.cache.LoadAll(all)
	log.WithField("keys", len(all)).Info("initial cache load complete")

	events, err := e.store.Watch(ctx, keyspace.Root)
	if err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	armTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(e.debounceDelay)
		timerC = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return orcherr.New(orcherr.CategoryFailedToWatch, keyspace.Root, errors.New("watch stream closed"))
			}
			e.handleEvent(ctx, ev, armTimer)
		case <-timerC:
			timer = nil
			timerC = nil
			e.build(ctx)
		}
	}
}

// handleEvent applies a watch event to the cache and dispatches it per the
// classifier's action (§4.3). Deletes update the cache but are otherwise
// only logged — stale connection cleanup is a non-goal (§7).
func (e *Engine) handleEvent(ctx context.Context, ev store.Event, armTimer func()) {
	if ev.Op == store.OpDelete {
		e.cache.Delete(ev.Key)
		if keyspace.InScope(ev.Key) {
			log.WithKey(ev.Key).Debug("delete observed, no reconciliation action taken")
		}
		return
	}

	e.cache.Set(ev.Key, ev.Value)

	switch classify(ev.Key) {
	case actionRebuild:
		armTimer()
	case actionPropagate:
		e.propagate(ctx, ev.Key, ev.Value)
	case actionUpdate:
		e.update(ctx, ev.Key, ev.Value)
	}
}
