package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Root runs the command loop. Commands execute one at a time: the loop
// itself is what prevents a second create or delete from interleaving with
// a running one, since there is no server-side lock to rely on.
func (a *App) Root(ctx context.Context) {

	fmt.Printf("imagedrive (theme: %s, type 'help' for commands)\n", a.theme)

	if err := a.refresh(ctx); err != nil {
		fmt.Println("warning: initial listing failed:", err)
	}

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("drive> ")
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: list, upload <path>, delete <key>, download <key> <out>, show <key>, reconcile, theme, exit")
		case "list":
			a.list(ctx)
		case "upload":
			a.upload(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "download":
			a.download(ctx, args)
		case "show":
			a.show(args)
		case "reconcile":
			a.reconcile(ctx)
		case "theme":
			a.toggleTheme(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
