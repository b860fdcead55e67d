package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/ephemeral"
)

func (a *App) setStatusCmd(ctx context.Context) {
	text := a.prompt("status text")
	if text == "" {
		fmt.Fprintln(a.out, "empty status, nothing set")
		return
	}

	if err := a.client.SetStatus(ctx, text, nil); err != nil {
		fmt.Fprintf(a.out, "set status failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "status set")
}

func (a *App) statusCmd(ctx context.Context, args []string) {
	userID := ""
	if len(args) > 0 {
		userID = args[0]
	}

	status, err := a.client.GetStatus(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Fprintln(a.out, "no active status")
			return
		}
		fmt.Fprintf(a.out, "status lookup failed: %v\n", err)
		return
	}

	fmt.Fprintf(a.out, "%s (%s)\n", status.Text, ephemeral.RelativeTime(status.CreatedAt, time.Now()))
}
