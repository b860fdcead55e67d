package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// fakeProvider scripts the vendor lifecycle for broker tests.
type fakeProvider struct {
	mu sync.Mutex

	readyAfter int // Ready() polls before reporting ready
	readyErr   error
	loadErr    error
	loadDelay  time.Duration
	renderErr  error
	resetErr   error
	execErr    error
	token      string

	loads    int
	forced   int
	readies  int
	renders  int
	resets   int
	executes int32
	inFlight int32
	peak     int32
}

func (f *fakeProvider) Load(_ context.Context, forceReload bool) error {
	if f.loadDelay > 0 {
		time.Sleep(f.loadDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if forceReload {
		f.forced++
	}
	return f.loadErr
}

func (f *fakeProvider) Ready(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readyErr != nil {
		return false, f.readyErr
	}
	f.readies++
	return f.readies > f.readyAfter, nil
}

func (f *fakeProvider) Render(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	if f.renderErr != nil {
		return "", f.renderErr
	}
	return fmt.Sprintf("widget-%d", f.renders), nil
}

func (f *fakeProvider) Reset(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.resetErr
}

func (f *fakeProvider) Execute(_ context.Context, _ string, _ string) (string, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if cur <= p || atomic.CompareAndSwapInt32(&f.peak, p, cur) {
			break
		}
	}
	atomic.AddInt32(&f.executes, 1)
	// Simulate challenge latency so concurrent callers overlap.
	time.Sleep(20 * time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.execErr != nil {
		return "", f.execErr
	}
	if f.token == "" {
		return "tok", nil
	}
	return f.token, nil
}

func newTestBroker(p Provider) *Broker {
	b := NewBroker(p, testLogger())
	b.pollInterval = time.Millisecond
	b.loadTimeout = 50 * time.Millisecond
	return b
}

func TestInitRendersOnce(t *testing.T) {
	p := &fakeProvider{}
	b := newTestBroker(p)

	require.NoError(t, b.Init(context.Background()))
	require.NoError(t, b.Init(context.Background()))

	assert.Equal(t, 1, p.loads)
	assert.Equal(t, 1, p.renders)
	assert.True(t, b.Ready())
}

func TestInitConcurrentCallsShareOneBuild(t *testing.T) {
	p := &fakeProvider{loadDelay: 10 * time.Millisecond}
	b := newTestBroker(p)
	b.loadTimeout = 200 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, b.Init(context.Background()))
		}()
	}
	wg.Wait()

	// The loser of the race waits on the in-flight build instead of
	// loading and rendering a second, orphaned widget.
	assert.Equal(t, 1, p.loads)
	assert.Equal(t, 1, p.renders)
	assert.True(t, b.Ready())
}

func TestInitPollsUntilReady(t *testing.T) {
	p := &fakeProvider{readyAfter: 3}
	b := newTestBroker(p)

	require.NoError(t, b.Init(context.Background()))
	assert.GreaterOrEqual(t, p.readies, 4)
}

func TestInitLoadTimeout(t *testing.T) {
	p := &fakeProvider{readyAfter: 1 << 30}
	b := newTestBroker(p)

	err := b.Init(context.Background())
	require.ErrorIs(t, err, common.ErrScriptLoadTimeout)
	assert.False(t, b.Ready())
}

func TestInitLoadFailed(t *testing.T) {
	p := &fakeProvider{loadErr: errors.New("dns")}
	b := newTestBroker(p)

	err := b.Init(context.Background())
	require.ErrorIs(t, err, common.ErrScriptLoadFailed)
}

func TestGetTokenBeforeInit(t *testing.T) {
	b := newTestBroker(&fakeProvider{})

	_, err := b.GetToken(context.Background(), "chat_send")
	require.ErrorIs(t, err, common.ErrNotReady)
}

func TestGetTokenResetsBeforeExecute(t *testing.T) {
	p := &fakeProvider{token: "tok-1"}
	b := newTestBroker(p)
	require.NoError(t, b.Init(context.Background()))

	tok, err := b.GetToken(context.Background(), "chat_send")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, p.resets)
}

func TestGetTokenSingleFlight(t *testing.T) {
	p := &fakeProvider{token: "tok-shared"}
	b := newTestBroker(p)
	require.NoError(t, b.Init(context.Background()))

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := b.GetToken(context.Background(), "chat_send")
			require.NoError(t, err)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	for _, tok := range tokens {
		assert.Equal(t, "tok-shared", tok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.executes))
}

func TestGetTokenSerializesAcrossActions(t *testing.T) {
	p := &fakeProvider{token: "tok"}
	b := newTestBroker(p)
	require.NoError(t, b.Init(context.Background()))

	var wg sync.WaitGroup
	for _, action := range []string{"chat_send", "profile_update"} {
		wg.Add(1)
		go func(action string) {
			defer wg.Done()
			_, err := b.GetToken(context.Background(), action)
			require.NoError(t, err)
		}(action)
	}
	wg.Wait()

	// Different actions each run a challenge, but never at the same
	// time on the one widget.
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.executes))
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.peak))
}

func TestExecuteFailureTearsDown(t *testing.T) {
	p := &fakeProvider{execErr: errors.New("challenge rejected")}
	b := newTestBroker(p)
	require.NoError(t, b.Init(context.Background()))

	_, err := b.GetToken(context.Background(), "chat_send")
	require.ErrorIs(t, err, common.ErrExecutionFailed)
	assert.False(t, b.Ready())

	// Until Retry rebuilds the session, callers fail fast.
	_, err = b.GetToken(context.Background(), "chat_send")
	require.ErrorIs(t, err, common.ErrNotReady)
}

func TestRetryRebuildsWithForceReload(t *testing.T) {
	p := &fakeProvider{execErr: errors.New("boom")}
	b := newTestBroker(p)
	require.NoError(t, b.Init(context.Background()))

	_, _ = b.GetToken(context.Background(), "chat_send")
	require.False(t, b.Ready())

	p.mu.Lock()
	p.execErr = nil
	p.mu.Unlock()

	require.NoError(t, b.Retry(context.Background()))
	assert.True(t, b.Ready())
	assert.Equal(t, 1, p.forced)

	tok, err := b.GetToken(context.Background(), "chat_send")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestHTTPProviderLifecycle(t *testing.T) {
	var executeCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/script/load", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/script/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ready": true})
	})
	mux.HandleFunc("/widgets", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		require.Equal(t, "explicit", body["mode"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"widget_id": "w1"})
	})
	mux.HandleFunc("/widgets/w1/reset", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/widgets/w1/execute", func(w http.ResponseWriter, r *http.Request) {
		executeCalls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "cap-token"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	p := NewHTTPProvider(ts.URL, "site-key")
	b := newTestBroker(p)
	require.NoError(t, b.Init(context.Background()))

	tok, err := b.GetToken(context.Background(), "chat_send")
	require.NoError(t, err)
	assert.Equal(t, "cap-token", tok)
	assert.Equal(t, 1, executeCalls)
}
