package main

import (
	"context"
	"log"

	"github.com/cppla/storeapi/config"
	"github.com/cppla/storeapi/routes"
	"github.com/cppla/storeapi/store"
	"github.com/cppla/storeapi/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := store.Open(cfg)
	if err != nil {
		utils.Sugar.Fatalf("open database: %v", err)
	}

	blacklist := utils.NewTokenBlacklist(utils.NewRedis(cfg))
	r, err := routes.SetupRouter(cfg, store.New(db), blacklist)
	if err != nil {
		utils.Sugar.Fatalf("setup router: %v", err)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(context.Background(), ":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
