package app

import (
	"context"
	"fmt"

	"github.com/R3E-Network/leaderboard/internal/app/cache"
	leaderboardsvc "github.com/R3E-Network/leaderboard/internal/app/services/leaderboard"
	userssvc "github.com/R3E-Network/leaderboard/internal/app/services/users"
	"github.com/R3E-Network/leaderboard/internal/app/storage"
	"github.com/R3E-Network/leaderboard/internal/app/storage/memory"
	"github.com/R3E-Network/leaderboard/internal/app/system"
	"github.com/R3E-Network/leaderboard/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users       storage.UserStore
	Leaderboard storage.LeaderboardStore
}

// Config carries application-level options.
type Config struct {
	Leaderboard       leaderboardsvc.Config
	RecomputeSchedule string
}

// Application ties the domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users       *userssvc.Service
	Leaderboard *leaderboardsvc.Service
}

// New builds a fully initialised application with the provided stores and
// cache. A nil cache disables the read cache entirely.
func New(stores Stores, c cache.Cache, cfg Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Leaderboard == nil {
		stores.Leaderboard = mem
	}

	manager := system.NewManager()

	usersService := userssvc.New(stores.Users, log)
	leaderboardService := leaderboardsvc.New(stores.Leaderboard, c, cfg.Leaderboard, log)

	if err := manager.Register(system.NoopService{ServiceName: "users"}); err != nil {
		return nil, fmt.Errorf("register users service: %w", err)
	}

	// The scheduled recomputer only runs in batch mode; inline mode re-ranks
	// inside every submission and needs no background pass.
	if leaderboardService.Mode() == leaderboardsvc.ModeBatch {
		recomputer := leaderboardsvc.NewRecomputer(leaderboardService, cfg.RecomputeSchedule, log)
		if err := manager.Register(recomputer); err != nil {
			return nil, fmt.Errorf("register %s: %w", recomputer.Name(), err)
		}
	}

	return &Application{
		manager:     manager,
		log:         log,
		Users:       usersService,
		Leaderboard: leaderboardService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
