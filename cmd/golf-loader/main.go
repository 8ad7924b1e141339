// Command golf-loader syncs OpenStreetMap golf courses into a document store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/everydaystudy/golf-db-loader/internal/adapters/driving/cli"
	"github.com/everydaystudy/golf-db-loader/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetFactories(app.OpenSettings, app.OpenEngine)
	code := cli.Execute(ctx)

	stop()
	os.Exit(code)
}
