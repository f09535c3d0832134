package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kirana/app/jobs"
	"github.com/shashiranjanraj/kirana/pkg/cache"
	"github.com/shashiranjanraj/kirana/pkg/database"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/queue"
)

// kirana queue:work — process queued jobs in a standalone worker process.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		queue.UseDB(database.DB)

		// Jobs are shared with the web process only through Redis; without it
		// a standalone worker would drain an empty in-memory queue.
		if err := cache.Connect(); err != nil {
			return err
		}
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))

		jobs.Register()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue.StartWorkers(ctx, 4)
		<-ctx.Done()
		logger.Info("queue: workers stopping")
		return nil
	},
}
