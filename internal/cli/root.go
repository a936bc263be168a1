package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if !a.loggedIn {
		return ""
	}
	return fmt.Sprintf("(%s/%s@%s)", a.config.Owner, a.config.Repo, a.config.Branch)
}

// Root greets the user, runs the initial login, and hands control to the
// REPL until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to pagekeeper (type 'help' for commands)")

	_ = a.Login(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
