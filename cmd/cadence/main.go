package main

import (
	"os"
	"os/signal"
	"syscall"

	"cadence/internal/bootstrap"
)

func main() {
	c := bootstrap.NewContainer()

	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitServices()
	c.MustInitBackground()
	c.MustInitAPI()

	log := c.Log
	log.Info("System initialized successfully")

	if err := c.Scheduler.Start(c.Context); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	go func() {
		if err := c.HTTPServer.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	waitForShutdown(c)
}

// waitForShutdown blocks until a termination signal arrives, then runs the
// coordinated shutdown sequence
func waitForShutdown(c *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	c.Log.Info("Shutting down...")

	c.Cancel()
	c.Lifecycle.Shutdown(c)
}
