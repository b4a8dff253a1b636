package main

import (
	"context"
	"time"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/middleware"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/routes"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if n, err := services.SeedAdmins(ctx, db, cfg.AdminEmails); err != nil {
		utils.Sugar.Warnf("admin seeding failed: %v", err)
	} else if n > 0 {
		utils.Sugar.Infof("granted admin role to %d configured users", n)
	}

	middleware.InitPrometheus()

	// Reset lapsed streaks in the background until shutdown
	services.StartStreakSweeper(ctx, db, time.Duration(cfg.StreakSweepIntervalMin)*time.Minute, cfg.Location())

	r := routes.SetupRouter(db, services.NewQuoteClient(cfg.QuoteAPIBase))

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, cancel); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
