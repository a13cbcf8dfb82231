// Command talkytime renames audio recordings after the timestamp a TalkyTime
// announcer speaks at the start of each take.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrWong99/talkytime/cmd/talkytime/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
