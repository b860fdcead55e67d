package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "mediagate CLI (type 'help' for commands)")

	if err := a.verify.Init(ctx); err != nil {
		// Sends will fail fast until 'retry' rebuilds the widget.
		fmt.Fprintf(a.out, "verification init failed: %v\n", err)
	}

	for {
		fmt.Fprint(a.out, "mg> ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: upload, send, like, view, status, setstatus, retry, ping, exit")
		case "upload":
			a.uploadCmd(ctx)
		case "send":
			a.sendCmd(ctx)
		case "like":
			a.likeCmd(ctx, args)
		case "view":
			a.viewCmd(ctx, args)
		case "status":
			a.statusCmd(ctx, args)
		case "setstatus":
			a.setStatusCmd(ctx)
		case "retry":
			if err := a.verify.Retry(ctx); err != nil {
				fmt.Fprintf(a.out, "retry failed: %v\n", err)
			} else {
				fmt.Fprintln(a.out, "verification ready")
			}
		case "ping":
			if err := a.client.Ping(ctx); err != nil {
				fmt.Fprintf(a.out, "server unreachable: %v\n", err)
			} else {
				fmt.Fprintln(a.out, "pong")
			}
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintf(a.out, "unknown command: %s\n", cmd)
		}
	}
}
