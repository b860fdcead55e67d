package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/9r89uf8/mediagate/internal/client/api"
	"github.com/9r89uf8/mediagate/internal/client/upload"
	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/media"
)

func (a *App) sendCmd(ctx context.Context) {
	conversationID := a.prompt("conversation id")
	path := a.prompt("file path")
	caption := a.prompt("caption (optional)")

	f, closeFn, err := openFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "cannot read %s: %v\n", path, err)
		return
	}
	defer closeFn()

	if err := a.sendMedia(ctx, conversationID, f, caption); err != nil {
		fmt.Fprintf(a.out, "send failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "sent")
}

// sendMedia runs the full gated send: acquire a permit, upload to the
// chat surface, then deliver. A permit the server rejects as exhausted
// or expired is dropped and the send retried once with a fresh one.
func (a *App) sendMedia(ctx context.Context, conversationID string, f upload.File, caption string) error {
	m, err := a.uploads.UploadOne(ctx, f, upload.Options{Surface: media.SurfaceChat})
	if err != nil {
		return err
	}

	kind, err := media.KindFromContentType(f.ContentType)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		p, err := a.permits.EnsurePermit(ctx)
		if err != nil {
			return err
		}

		_, err = a.client.SendMediaMessage(ctx, api.SendMessageRequest{
			ConversationID: conversationID,
			Kind:           kind,
			ObjectKey:      m.ObjectKeys[0],
			Caption:        caption,
			PermitID:       p.ID,
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, common.ErrPermitExhausted) || errors.Is(err, common.ErrPermitExpired) {
			// The permit died under us; the retry exchanges a fresh one.
			continue
		}
		return err
	}
	return common.ErrPermitExchangeFailed
}
