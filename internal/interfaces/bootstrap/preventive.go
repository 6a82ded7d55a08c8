// Package bootstrap wires the preventive work-order generator from
// configuration. The HTTP server, the CLI and the worker all build their
// components here so they share one run state per process.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cmms/internal/application/preventive/usecases"
	"cmms/internal/domain/maintenance"
	"cmms/internal/infrastructure/cache"
	"cmms/internal/infrastructure/config"
	"cmms/internal/infrastructure/email"
	"cmms/internal/infrastructure/repository"
	"cmms/internal/infrastructure/scheduler"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/db"
	"cmms/internal/shared/logger"
)

// Preventive holds the wired use cases of the generator.
type Preventive struct {
	Runner          *usecases.GenerationRunner
	GenerateAll     *usecases.GenerateAllUseCase
	GenerateForPlan *usecases.GenerateForPlanUseCase
	CheckPending    *usecases.CheckPendingUseCase
	ListRuns        *usecases.ListRunsUseCase
	Clock           biztime.Clock
}

// NewPreventive builds the generator on top of gormDB. redisClient may be nil
// when Redis is disabled.
func NewPreventive(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client, log logger.Interface) (*Preventive, error) {
	clock := biztime.SystemClock{}

	planRepo := repository.NewMaintenancePlanRepository(gormDB)
	workOrderRepo := repository.NewWorkOrderRepository(gormDB)
	assets := repository.NewAssetLookup(gormDB)

	var users maintenance.UserDirectory = repository.NewUserDirectory(gormDB)
	if redisClient != nil {
		ttl := time.Duration(cfg.Redis.UserNameTTLMinutes) * time.Minute
		users = cache.NewUserNameCache(redisClient, users, ttl, log.Named("user-name-cache"))
	}

	resolver := usecases.NewFrequencyResolver(log.Named("frequency"))
	guard := maintenance.NewDuplicateGuard(workOrderRepo)

	factory := usecases.NewWorkOrderFactory(
		planRepo,
		workOrderRepo,
		assets,
		users,
		db.NewTransactionManager(gormDB),
		clock,
		log.Named("work-order-factory"),
	)
	if cfg.Generation.LocationFallback {
		factory.SetLocationFallback(assets)
	}

	processor := usecases.NewPlanProcessor(workOrderRepo, guard, factory, resolver, log.Named("plan-processor"))

	runner := usecases.NewGenerationRunner(clock, log.Named("generation-run"))
	store, err := newRunLogStore(cfg, gormDB, redisClient)
	if err != nil {
		return nil, err
	}
	if store != nil {
		runner.SetRunLogStore(store)
	}
	if cfg.Email.Enabled {
		runner.SetRunNotifier(email.NewRunReportMailer(cfg.Email, log.Named("run-report")))
	}

	return &Preventive{
		Runner:          runner,
		GenerateAll:     usecases.NewGenerateAllUseCase(planRepo, processor, runner, clock, log.Named("generate-all")),
		GenerateForPlan: usecases.NewGenerateForPlanUseCase(planRepo, processor, runner, clock, log.Named("generate-for-plan")),
		CheckPending:    usecases.NewCheckPendingUseCase(planRepo, workOrderRepo, resolver, clock, log.Named("check-pending")),
		ListRuns:        usecases.NewListRunsUseCase(store, runner, log.Named("list-runs")),
		Clock:           clock,
	}, nil
}

func newRunLogStore(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client) (usecases.RunLogStore, error) {
	switch cfg.Generation.RunLogStore {
	case "database":
		return repository.NewGenerationRunRepository(gormDB, cfg.Generation.RunLogMaxSize), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("run log store \"redis\" requires a redis client")
		}
		return cache.NewRedisRunLogStore(redisClient, cfg.Generation.RunLogMaxSize), nil
	default:
		return nil, nil
	}
}

// NewScheduler builds the automatic scheduler over p.
func (p *Preventive) NewScheduler(cfg *config.Config, log logger.Interface) (*scheduler.GenerationScheduler, error) {
	return scheduler.NewGenerationScheduler(cfg.Scheduler, p.GenerateAll, p.CheckPending, p.Clock, log.Named("scheduler"))
}

// NewRedisClient connects to Redis when it is enabled, returning nil otherwise.
func NewRedisClient(ctx context.Context, cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	return client, nil
}
