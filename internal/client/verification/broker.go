package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/logging"
)

const (
	defaultLoadTimeout  = 15 * time.Second
	defaultPollInterval = 100 * time.Millisecond
)

// Broker sequences the provider lifecycle: one load, one rendered
// widget, one execution at a time. Concurrent GetToken callers share a
// single challenge run. Ownership is constructor-injected; there is no
// package-level singleton.
type Broker struct {
	provider Provider
	logger   logging.Logger

	loadTimeout  time.Duration
	pollInterval time.Duration

	mu         sync.Mutex
	widgetID   string
	generation uint64

	// initMu serializes session builds so concurrent Init callers share
	// one load and one render; execMu serializes challenge runs so at
	// most one execution is outstanding on the widget.
	initMu sync.Mutex
	execMu sync.Mutex

	sf singleflight.Group
}

func NewBroker(p Provider, logger logging.Logger) *Broker {
	return &Broker{
		provider:     p,
		logger:       logger.With("module", "verification_broker"),
		loadTimeout:  defaultLoadTimeout,
		pollInterval: defaultPollInterval,
	}
}

// Init loads the provider script and renders the widget session. It is
// idempotent: once a widget exists, Init returns immediately, and
// concurrent callers wait on the in-flight build instead of starting
// their own. The load is polled on an interval and bounded by the load
// timeout.
func (b *Broker) Init(ctx context.Context) error {
	return b.init(ctx, false)
}

func (b *Broker) init(ctx context.Context, forceReload bool) error {
	b.initMu.Lock()
	defer b.initMu.Unlock()

	b.mu.Lock()
	if b.widgetID != "" && !forceReload {
		b.mu.Unlock()
		return nil
	}
	b.widgetID = ""
	gen := b.generation
	b.mu.Unlock()

	if err := b.provider.Load(ctx, forceReload); err != nil {
		return fmt.Errorf("%w: %v", common.ErrScriptLoadFailed, err)
	}

	if err := b.waitReady(ctx, gen); err != nil {
		return err
	}

	widgetID, err := b.provider.Render(ctx)
	if err != nil {
		return fmt.Errorf("%w: render: %v", common.ErrScriptLoadFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation != gen {
		// A Retry superseded this init; its widget wins.
		return nil
	}
	b.widgetID = widgetID
	return nil
}

func (b *Broker) waitReady(ctx context.Context, gen uint64) error {
	deadline := time.Now().Add(b.loadTimeout)
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		ready, err := b.provider.Ready(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrScriptLoadFailed, err)
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			return common.ErrScriptLoadTimeout
		}

		b.mu.Lock()
		stale := b.generation != gen
		b.mu.Unlock()
		if stale {
			return common.ErrNotReady
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Ready reports whether a widget session is available.
func (b *Broker) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.widgetID != ""
}

// GetToken runs one challenge and returns the verification token.
// Callers racing on the same action share a single execution and its
// outcome; runs for different actions are serialized so the widget
// never has more than one execution outstanding. The widget is reset
// before every run; a failed run tears the session down, so the next
// call fails fast with ErrNotReady until Retry rebuilds it.
func (b *Broker) GetToken(ctx context.Context, action string) (string, error) {
	v, err, _ := b.sf.Do(action, func() (interface{}, error) {
		b.execMu.Lock()
		defer b.execMu.Unlock()
		return b.getToken(ctx, action)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *Broker) getToken(ctx context.Context, action string) (string, error) {
	b.mu.Lock()
	widgetID := b.widgetID
	b.mu.Unlock()

	if widgetID == "" {
		return "", common.ErrNotReady
	}

	if err := b.provider.Reset(ctx, widgetID); err != nil {
		b.teardown(widgetID)
		return "", fmt.Errorf("%w: reset: %v", common.ErrExecutionFailed, err)
	}

	token, err := b.provider.Execute(ctx, widgetID, action)
	if err != nil {
		b.logger.Warn(ctx, "challenge execution failed", "action", action, "error", err)
		b.teardown(widgetID)
		return "", fmt.Errorf("%w: %v", common.ErrExecutionFailed, err)
	}
	if token == "" {
		b.teardown(widgetID)
		return "", fmt.Errorf("%w: empty token", common.ErrExecutionFailed)
	}
	return token, nil
}

// teardown resets the failed widget best-effort and clears the slot.
func (b *Broker) teardown(widgetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = b.provider.Reset(ctx, widgetID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.widgetID == widgetID {
		b.widgetID = ""
	}
}

// Retry tears the session down and rebuilds it from scratch with a
// forced script reload. The generation bump invalidates any init still
// in flight.
func (b *Broker) Retry(ctx context.Context) error {
	b.mu.Lock()
	b.generation++
	b.widgetID = ""
	b.mu.Unlock()

	return b.init(ctx, true)
}
