package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Zephyrlll/Fillstellar-sub002/internal/api"
	"github.com/Zephyrlll/Fillstellar-sub002/internal/config"
	"github.com/Zephyrlll/Fillstellar-sub002/internal/sim"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	} else {
		log.Println("loaded environment from ../.env")
	}

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	serverCfg := appConfig.Server
	port := strconv.Itoa(serverCfg.Port)

	log.Printf("config: %d TPS, G=%.2f, boundary=%.0f, grid cell=%.0f",
		appConfig.TickRate, appConfig.Physics.G,
		appConfig.Physics.GalaxyBoundary, appConfig.Physics.SpatialGridCellSize)

	// Create simulation engine
	engine, err := sim.NewEngine(sim.EngineConfig{
		TickRate: appConfig.TickRate,
		Physics:  appConfig.Physics,
		Limits:   appConfig.Limits,
	})
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}
	limits := engine.GetLimits()
	log.Printf("resource limits: %d bodies, %d per snapshot",
		limits.MaxBodies, limits.MaxSnapshotBodies)

	// Start event log
	if err := engine.StartEventLog(appConfig.EventLogPath); err != nil {
		log.Printf("event log disabled: %v", err)
	} else {
		log.Printf("event log: %s", appConfig.EventLogPath)
	}

	// Start debug server (pprof + prometheus, localhost only)
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	// Create API server
	server := api.NewServer(engine, api.ServerConfig{
		MaxBodiesPerRequest: serverCfg.MaxBodiesPerRequest,
	})

	// Wire metrics and the merge feed to the engine
	engine.SetTickObserver(func(r sim.TickReport) {
		api.RecordTick(r.Duration)
		api.UpdateBodyCount(r.BodyCount)
		api.RecordDeferred(r.Deferred)
	})
	engine.OnMerge = func(survivor, absorbed *sim.Body) {
		api.RecordMerge(absorbed.Mass)
		server.BroadcastMerge(survivor.ID, absorbed.ID, absorbed.Mass)
	}

	// Optionally seed a starter galaxy
	if os.Getenv("SEED_ON_START") == "true" {
		spec := sim.DefaultSeedSpec()
		if v := os.Getenv("SEED_VALUE"); v != "" {
			if s, err := strconv.ParseInt(v, 10, 64); err == nil {
				spec.Seed = s
			}
		}
		count, err := engine.SeedGalaxy(spec)
		if err != nil {
			log.Printf("seed failed: %v", err)
		} else {
			log.Printf("seeded galaxy with %d bodies (seed %d)", count, spec.Seed)
		}
	}

	// Start simulation engine
	engine.Start()
	log.Println("simulation engine started")

	// Start API server in goroutine
	go func() {
		addr := ":" + port
		log.Printf("api server on http://localhost%s", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down...")
	server.Stop()
	engine.Stop()
	engine.StopEventLog()
	log.Println("goodbye")
}
