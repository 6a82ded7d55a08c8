package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cmms/internal/infrastructure/database"
	"cmms/internal/interfaces/bootstrap"
)

// The worker runs only the automatic scheduler, for deployments where the
// API server is started with --scheduler=false.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, log, err := bootstrap.InitRuntime(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start worker: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	log.Infow("starting generation worker", "environment", env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := bootstrap.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Errorw("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	components, err := bootstrap.NewPreventive(cfg, database.Get(), redisClient, log)
	if err != nil {
		log.Errorw("failed to wire generator", "error", err)
		os.Exit(1)
	}

	sched, err := components.NewScheduler(cfg, log)
	if err != nil {
		log.Errorw("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	sched.Start(ctx)
	for _, job := range sched.Status().Jobs {
		log.Infow("scheduled job", "name", job.Name, "spec", job.Spec, "next_fire", job.NextFire)
	}

	<-ctx.Done()
	log.Infow("shutting down worker...")
	sched.Stop()
	log.Infow("worker exited gracefully")
}
