package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/modkeeper/cmd/modkeeper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := modkeeper.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, modkeeper.RenderError(err))
		stop()
		os.Exit(1)
	}
}
