package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sermonclips-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	a.Log.Info("Worker running; waiting for jobs")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		a.Log.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Worker shut down")
}
