// Command goblog is a terminal client for the blog API. It keeps one session
// per profile in a token file or in Redis and drives it through the goBlog
// session store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, newApp(os.Stdout, os.Stderr), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "goblog:", err)
		os.Exit(1)
	}
}
