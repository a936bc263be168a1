package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	CacheKey(ctx context.Context) error
	Publish(ctx context.Context) error
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) error
	Save(ctx context.Context) error
	AddGallery(ctx context.Context) error
	RemoveGallery(ctx context.Context) error
	EditSocial(ctx context.Context) error
	EditCard(ctx context.Context) error
	EditSite(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the publisher CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, publish, delete [slug], save, gallery, rmgallery, social, card, site, cachekey, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "cachekey":
			_ = a.CacheKey(ctx)

		case "publish":
			_ = a.Publish(ctx)

		case "delete":
			slug := ""
			if len(args) > 0 {
				slug = args[0]
			}
			_ = a.Delete(ctx, slug)

		case "l", "list":
			_ = a.List(ctx)

		case "save":
			_ = a.Save(ctx)

		case "gallery":
			_ = a.AddGallery(ctx)

		case "rmgallery":
			_ = a.RemoveGallery(ctx)

		case "social":
			_ = a.EditSocial(ctx)

		case "card":
			_ = a.EditCard(ctx)

		case "site":
			_ = a.EditSite(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
