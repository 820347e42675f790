package fx

import (
	"padel-tracker/internal/cache"
	"padel-tracker/internal/config"
	"padel-tracker/internal/database"
	"padel-tracker/internal/logger"
	"padel-tracker/internal/repository"
	"padel-tracker/internal/scheduler"
	"padel-tracker/internal/server"
	"padel-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideLeaderboard(cfg *config.Config, log zerolog.Logger) *cache.Leaderboard {
	return cache.NewLeaderboard(cfg.RedisAddr, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideLeaderboard),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewBaselineRepository),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewLedgerService),
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewRecalcService),
	fx.Provide(service.NewPenaltyService),
	fx.Provide(scheduler.New),
	// server
	fx.Provide(server.NewTrackerServer),
)
