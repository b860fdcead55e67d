package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/9r89uf8/mediagate/internal/client/upload"
	"github.com/9r89uf8/mediagate/internal/media"
)

// openFile stats and opens one path as an upload candidate.
func openFile(path string) (upload.File, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return upload.File{}, nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	f, err := os.Open(path)
	if err != nil {
		return upload.File{}, nil, err
	}

	return upload.File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

func (a *App) uploadCmd(ctx context.Context) {
	surface := media.Surface(a.prompt("surface (gallery/posts/assets)"))
	paths := strings.Fields(a.prompt("file paths"))
	if len(paths) == 0 {
		fmt.Fprintln(a.out, "nothing to upload")
		return
	}

	group := false
	if len(paths) > 1 {
		group = a.promptYesNo("group images into one record")
	}
	text := a.prompt("text (optional)")
	premium := a.promptYesNo("premium only")

	files := make([]upload.File, 0, len(paths))
	for _, path := range paths {
		f, closeFn, err := openFile(path)
		if err != nil {
			fmt.Fprintf(a.out, "skipping %s: %v\n", path, err)
			continue
		}
		defer closeFn()
		files = append(files, f)
	}

	result, err := a.uploads.Upload(ctx, files, upload.Options{
		Surface:     surface,
		Group:       group,
		Text:        text,
		PremiumOnly: premium,
		Progress: func(e upload.Event) {
			if e.Stage == upload.StageFailed {
				fmt.Fprintf(a.out, "  %s: FAILED (%v)\n", e.Name, e.Err)
				return
			}
			fmt.Fprintf(a.out, "  %s: %s\n", e.Name, e.Stage)
		},
	})
	if err != nil {
		fmt.Fprintf(a.out, "upload error: %v\n", err)
		return
	}

	for _, m := range result.Media {
		fmt.Fprintf(a.out, "created %s (%d object(s))\n", m.ID, len(m.ObjectKeys))
	}
	if len(result.Failed) > 0 {
		fmt.Fprintf(a.out, "failed: %s\n", strings.Join(result.Failed, ", "))
	}
}
