package media

import (
	"fmt"

	"github.com/9r89uf8/mediagate/internal/common"
)

// Surface names the context an upload lands in. The surface decides both
// the size ceiling and the default flags applied at finalize.
type Surface string

const (
	// SurfaceChat is user-facing chat sends (permit-gated).
	SurfaceChat Surface = "chat"
	// SurfaceGallery is admin gallery uploads.
	SurfaceGallery Surface = "gallery"
	// SurfacePosts is admin post uploads. Posts are never premium-gated.
	SurfacePosts Surface = "posts"
	// SurfaceAssets is AI reply material. Assets cannot be liked and
	// require descriptive text; audio assets are auto-flagged mature.
	SurfaceAssets Surface = "assets"
)

const (
	mb = int64(1) << 20

	chatImageMaxBytes = 3 * mb
	chatVideoMaxBytes = 5 * mb
	chatAudioMaxBytes = 2 * mb

	adminMediaMaxBytes = 200 * mb
	adminAudioMaxBytes = 20 * mb
)

// Policy is one row of the per-surface policy table.
type Policy struct {
	// MaxBytes per kind. Zero means the kind is not allowed on the surface.
	MaxBytes map[Kind]int64

	// Finalize defaults.
	PremiumOnly bool
	CanBeLiked  bool

	// RequiresText forces a descriptive caption at finalize.
	RequiresText bool
	// MatureAudio auto-flags finalized audio as mature.
	MatureAudio bool
}

var policies = map[Surface]Policy{
	SurfaceChat: {
		MaxBytes: map[Kind]int64{
			KindImage: chatImageMaxBytes,
			KindVideo: chatVideoMaxBytes,
			KindAudio: chatAudioMaxBytes,
		},
		CanBeLiked: false,
	},
	SurfaceGallery: {
		MaxBytes: map[Kind]int64{
			KindImage: adminMediaMaxBytes,
			KindVideo: adminMediaMaxBytes,
			KindAudio: adminAudioMaxBytes,
		},
		PremiumOnly: false,
		CanBeLiked:  true,
	},
	SurfacePosts: {
		MaxBytes: map[Kind]int64{
			KindImage: adminMediaMaxBytes,
			KindVideo: adminMediaMaxBytes,
			KindAudio: adminAudioMaxBytes,
		},
		// Posts are never premium-gated; a caller-supplied premiumOnly
		// is ignored at finalize.
		PremiumOnly: false,
		CanBeLiked:  true,
	},
	SurfaceAssets: {
		MaxBytes: map[Kind]int64{
			KindImage: adminMediaMaxBytes,
			KindVideo: adminMediaMaxBytes,
			KindAudio: adminAudioMaxBytes,
		},
		PremiumOnly:  false,
		CanBeLiked:   false,
		RequiresText: true,
		MatureAudio:  true,
	},
}

// PolicyFor returns the policy row for a surface.
func PolicyFor(surface Surface) (Policy, error) {
	p, ok := policies[surface]
	if !ok {
		return Policy{}, fmt.Errorf("unknown surface %q", surface)
	}
	return p, nil
}

// SizeError is the user-facing oversize error. It wraps
// common.ErrFileTooLarge so callers can still match with errors.Is.
type SizeError struct {
	Kind Kind
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s too large. Max %s", e.Kind.Label(), formatBytes(e.Max))
}

func (e *SizeError) Unwrap() error { return common.ErrFileTooLarge }

func formatBytes(n int64) string {
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%dB", n)
}

// Validate checks a declared content type and size against the policy
// table. It runs on the client before signing and again on the server
// before a ticket is issued.
func Validate(surface Surface, contentType string, size int64) (Kind, error) {
	kind, err := KindFromContentType(contentType)
	if err != nil {
		return "", err
	}
	p, err := PolicyFor(surface)
	if err != nil {
		return "", err
	}
	max := p.MaxBytes[kind]
	if max == 0 {
		return "", fmt.Errorf("%w: %s not allowed on %s", common.ErrUnsupportedFileType, kind, surface)
	}
	if size > max {
		return "", &SizeError{Kind: kind, Max: max}
	}
	return kind, nil
}
