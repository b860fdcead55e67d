package cli

import (
	"context"
	"fmt"
)

func (a *App) likeCmd(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: like <media-id>")
		return
	}

	state, err := a.likes.Toggle(ctx, args[0])
	if err != nil {
		fmt.Fprintf(a.out, "like failed: %v\n", err)
		return
	}

	verb := "unliked"
	if state.Liked {
		verb = "liked"
	}
	fmt.Fprintf(a.out, "%s (%d likes)\n", verb, state.Count)
}

func (a *App) viewCmd(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "usage: view <object-key> [object-key...]")
		return
	}

	urls := a.views.Resolve(ctx, args)
	for _, key := range args {
		if url, ok := urls[key]; ok {
			fmt.Fprintf(a.out, "%s -> %s\n", key, url)
		} else {
			fmt.Fprintf(a.out, "%s -> (unavailable)\n", key)
		}
	}
}
