// Package media defines the shared vocabulary of the upload pipeline:
// media kinds derived from MIME types, upload surfaces, and the per-surface
// policy table (size ceilings and finalize defaults) enforced on both the
// client and the server.
package media

import (
	"strings"

	"github.com/9r89uf8/mediagate/internal/common"
)

// Kind classifies an uploaded object by its MIME prefix.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// KindFromContentType maps a MIME content type onto a Kind.
// Anything outside image/*, video/*, audio/* is rejected before the
// pipeline issues any network call.
func KindFromContentType(contentType string) (Kind, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage, nil
	case strings.HasPrefix(ct, "video/"):
		return KindVideo, nil
	case strings.HasPrefix(ct, "audio/"):
		return KindAudio, nil
	default:
		return "", common.ErrUnsupportedFileType
	}
}

// Label returns the human form used in size error messages ("Image", ...).
func (k Kind) Label() string {
	switch k {
	case KindImage:
		return "Image"
	case KindVideo:
		return "Video"
	case KindAudio:
		return "Audio"
	}
	return "File"
}

// Valid reports whether k is one of the three supported kinds.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo || k == KindAudio
}
