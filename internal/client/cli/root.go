package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user.Username)
}

// Root prints a greeting and runs the REPL until the user leaves. An
// unreachable server is reported but does not stop the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintf(a.out, "Chat relay CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)
	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %v\n", err)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
