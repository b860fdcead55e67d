// Package upload drives the sign → PUT → finalize pipeline on the
// client. Each file needs a single-use upload ticket; a grouped image
// batch collects its object keys into one finalize call so the gallery
// sees one record.
package upload

import (
	"context"
	"fmt"
	"io"

	"github.com/9r89uf8/mediagate/internal/client/api"
	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/logging"
	"github.com/9r89uf8/mediagate/internal/media"
)

// Stage identifies a pipeline step for progress reporting.
type Stage string

const (
	StageValidated Stage = "validated"
	StageSigned    Stage = "signed"
	StageUploaded  Stage = "uploaded"
	StageFinalized Stage = "finalized"
	StageFailed    Stage = "failed"
)

// Event is emitted on the progress callback as a file moves through the
// pipeline. Err is set only for StageFailed.
type Event struct {
	Name  string
	Stage Stage
	Err   error
}

// File is one upload candidate. Content is read exactly once, during
// the PUT.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Options configures one Upload call.
type Options struct {
	Surface media.Surface

	// Group collects all image uploads into a single finalize call.
	// Non-image files in the batch still finalize individually.
	Group bool

	Text        string
	Location    string
	PremiumOnly bool

	// Progress, when set, receives one event per pipeline step.
	Progress func(Event)
}

// Result reports what an Upload call achieved. Failed lists the names
// of files that did not make it into any record.
type Result struct {
	Media  []*api.Media
	Failed []string
}

// Broker runs upload pipelines against the API client.
type Broker struct {
	client api.Client
	logger logging.Logger
}

func NewBroker(client api.Client, logger logging.Logger) *Broker {
	return &Broker{client: client, logger: logger.With("module", "upload_broker")}
}

func (b *Broker) emit(opts *Options, name string, stage Stage, err error) {
	if opts.Progress != nil {
		opts.Progress(Event{Name: name, Stage: stage, Err: err})
	}
}

// Upload pushes files through the pipeline. Files are independent: one
// failure never aborts the rest. With Group set, images that uploaded
// successfully land in one grouped record (input order preserved, first
// key primary); the record is created as long as at least one image
// made it.
func (b *Broker) Upload(ctx context.Context, files []File, opts Options) (*Result, error) {
	result := &Result{}

	type staged struct {
		file File
		kind media.Kind
	}

	// Policy runs before any network traffic, so an oversize file is
	// rejected with the exact policy message and costs nothing.
	ready := make([]staged, 0, len(files))
	for _, f := range files {
		kind, err := media.Validate(opts.Surface, f.ContentType, f.Size)
		if err != nil {
			b.emit(&opts, f.Name, StageFailed, err)
			result.Failed = append(result.Failed, f.Name)
			continue
		}
		b.emit(&opts, f.Name, StageValidated, nil)
		ready = append(ready, staged{file: f, kind: kind})
	}

	var groupKeys []string
	var rest []staged

	for _, s := range ready {
		if opts.Group && s.kind == media.KindImage {
			key, err := b.putOne(ctx, s.file, opts)
			if err != nil {
				b.emit(&opts, s.file.Name, StageFailed, err)
				result.Failed = append(result.Failed, s.file.Name)
				continue
			}
			groupKeys = append(groupKeys, key)
			continue
		}
		rest = append(rest, s)
	}

	if len(groupKeys) > 0 {
		m, err := b.client.Finalize(ctx, api.FinalizeRequest{
			Surface:     opts.Surface,
			Kind:        media.KindImage,
			ObjectKeys:  groupKeys,
			Text:        opts.Text,
			Location:    opts.Location,
			PremiumOnly: opts.PremiumOnly,
		})
		if err != nil {
			// The grouped record failed as a whole; every uploaded
			// image counts as lost.
			for _, s := range ready {
				if opts.Group && s.kind == media.KindImage && !contains(result.Failed, s.file.Name) {
					b.emit(&opts, s.file.Name, StageFailed, err)
					result.Failed = append(result.Failed, s.file.Name)
				}
			}
		} else {
			result.Media = append(result.Media, m)
			for _, s := range ready {
				if opts.Group && s.kind == media.KindImage && !contains(result.Failed, s.file.Name) {
					b.emit(&opts, s.file.Name, StageFinalized, nil)
				}
			}
		}
	}

	// Non-grouped files are fully independent pipelines.
	for _, s := range rest {
		m, err := b.uploadOne(ctx, s.file, s.kind, opts)
		if err != nil {
			b.emit(&opts, s.file.Name, StageFailed, err)
			result.Failed = append(result.Failed, s.file.Name)
			continue
		}
		b.emit(&opts, s.file.Name, StageFinalized, nil)
		result.Media = append(result.Media, m)
	}

	return result, nil
}

// UploadOne is the single-file convenience used by the chat send path.
// It returns the object key of the uploaded file's record.
func (b *Broker) UploadOne(ctx context.Context, f File, opts Options) (*api.Media, error) {
	kind, err := media.Validate(opts.Surface, f.ContentType, f.Size)
	if err != nil {
		return nil, err
	}
	return b.uploadOne(ctx, f, kind, opts)
}

// putOne signs and PUTs one file, returning its object key. A failed
// PUT discards the ticket: retrying means a fresh sign.
func (b *Broker) putOne(ctx context.Context, f File, opts Options) (string, error) {
	ticket, err := b.client.IssueTicket(ctx, opts.Surface, f.ContentType, f.Size)
	if err != nil {
		return "", err
	}
	b.emit(&opts, f.Name, StageSigned, nil)

	if err := b.client.UploadPut(ctx, ticket.UploadURL, f.ContentType, f.Content); err != nil {
		b.logger.Warn(ctx, "upload put failed", "file", f.Name, "key", ticket.ObjectKey, "error", err)
		return "", fmt.Errorf("%w: %s", common.ErrUploadPutFailed, f.Name)
	}
	b.emit(&opts, f.Name, StageUploaded, nil)

	return ticket.ObjectKey, nil
}

func (b *Broker) uploadOne(ctx context.Context, f File, kind media.Kind, opts Options) (*api.Media, error) {
	key, err := b.putOne(ctx, f, opts)
	if err != nil {
		return nil, err
	}

	m, err := b.client.Finalize(ctx, api.FinalizeRequest{
		Surface:     opts.Surface,
		Kind:        kind,
		ObjectKeys:  []string{key},
		Text:        opts.Text,
		Location:    opts.Location,
		PremiumOnly: opts.PremiumOnly,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
