// Command hierafacts resolves hiera variables into typed facts.
//
// Usage:
//
//	hierafacts resolve -c hiera.yaml --scope environment=production ntp::servers db::port=db_port
//	hierafacts resolve --request request.yaml --raw
//	hierafacts config show
//	hierafacts config set --local backend bridge
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
