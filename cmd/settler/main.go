package main

import (
	"context"
	"os/signal"
	"syscall"

	workersettler "github.com/GareBear99/admension/app/settler"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	defer cancel()

	app := workersettler.Initialize(ctx)

	app.Start(ctx)
}
