package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mpurbo/ecosim/internal/core/ecology"
	"github.com/mpurbo/ecosim/internal/core/events/bus"
	"github.com/mpurbo/ecosim/internal/core/observability/log"
	"github.com/mpurbo/ecosim/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.New(log.LevelInfo)

	path := "scenario.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	scenario, err := ecology.LoadScenario(path)
	if err != nil {
		logger.Fatal("failed to load scenario", log.String("path", path), log.Error(err))
	}

	eventBus := bus.New()
	eco, err := scenario.Build(logger, eventBus)
	if err != nil {
		logger.Fatal("failed to build ecosystem", log.Error(err))
	}

	srv := server.New(eco, eventBus, server.DefaultConfig(), logger)
	if err = srv.Start(ctx); err != nil {
		logger.Fatal("failed to start observation server", log.Error(err))
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	if scenario.Hazard != nil {
		if err = eco.OnDisaster(ctx, scenario.Hazard.Vector()); err != nil {
			logger.Error("disaster response failed", log.Error(err))
		}
	}

	<-stopCh
	cancel()
	if err = srv.Stop(); err != nil {
		fmt.Println("Error stopping server:", err)
	}
}
