// Package engagement applies optimistic like toggles: the UI-visible
// count moves immediately, then reconciles against the server's
// authoritative count, rolling back when the call fails.
package engagement

import (
	"context"
	"sync"

	"github.com/9r89uf8/mediagate/internal/client/api"
	"github.com/9r89uf8/mediagate/internal/logging"
)

// LikeState is the locally tracked state for one media record.
type LikeState struct {
	Liked bool
	Count int64
}

// Likes tracks per-media like state and pushes toggles to the server.
type Likes struct {
	client api.Client
	logger logging.Logger

	mu    sync.Mutex
	state map[string]*LikeState
}

func NewLikes(client api.Client, logger logging.Logger) *Likes {
	return &Likes{
		client: client,
		logger: logger.With("module", "engagement"),
		state:  make(map[string]*LikeState),
	}
}

// Seed installs the known server state for a media record, typically
// from a fetched media list.
func (l *Likes) Seed(mediaID string, liked bool, count int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state[mediaID] = &LikeState{Liked: liked, Count: count}
}

// Get returns the current local state.
func (l *Likes) Get(mediaID string) LikeState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.state[mediaID]; ok {
		return *s
	}
	return LikeState{}
}

// Toggle flips the like optimistically and confirms with the server.
// On success the count snaps to the authoritative value; on failure the
// optimistic delta is rolled back and the error returned.
func (l *Likes) Toggle(ctx context.Context, mediaID string) (LikeState, error) {
	l.mu.Lock()
	s, ok := l.state[mediaID]
	if !ok {
		s = &LikeState{}
		l.state[mediaID] = s
	}

	s.Liked = !s.Liked
	if s.Liked {
		s.Count++
	} else if s.Count > 0 {
		s.Count--
	}
	liked := s.Liked
	l.mu.Unlock()

	count, err := l.client.ToggleLike(ctx, mediaID, liked)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		// Roll the optimistic flip back.
		s.Liked = !liked
		if liked {
			if s.Count > 0 {
				s.Count--
			}
		} else {
			s.Count++
		}
		l.logger.Warn(ctx, "like toggle failed, rolled back", "media_id", mediaID, "error", err)
		return *s, err
	}

	// Reconcile with the authoritative count.
	s.Count = count
	return *s, nil
}
