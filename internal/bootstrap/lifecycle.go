package bootstrap

import (
	"context"
	"time"

	"cadence/pkg/logger"
)

// Lifecycle manages graceful startup and shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 60 * time.Second,
	}
}

// Shutdown performs coordinated cleanup in the correct order:
// 1. No new requests accepted
// 2. Workers finish cleanly
// 3. Producer closes after nothing publishes anymore
// 4. Logs and errors flushed
// 5. Database connections last, other components may need them
func (l *Lifecycle) Shutdown(c *Container) {
	log := c.Log

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/6] Stopping HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
	defer httpCancel()

	if err := c.HTTPServer.Shutdown(httpCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	}

	log.Info("[2/6] Stopping background workers...")
	if c.Scheduler != nil && c.Scheduler.IsRunning() {
		if err := c.Scheduler.Stop(); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		} else {
			log.Info("✓ Workers stopped")
		}
	}

	log.Info("[3/6] Closing Kafka producer...")
	if c.KafkaProducer != nil {
		if err := c.KafkaProducer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	log.Info("[4/6] Flushing error tracker...")
	if c.ErrorTracker != nil {
		flushCtx, flushCancel := context.WithTimeout(shutdownCtx, 3*time.Second)
		if err := c.ErrorTracker.Flush(flushCtx); err != nil {
			log.Errorw("Error tracker flush failed", "error", err)
		} else {
			log.Info("✓ Error tracker flushed")
		}
		flushCancel()
	}

	log.Info("[5/6] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	log.Info("[6/6] Closing database connections...")
	l.closeDatabases(c, log)

	log.Info("✅ Graceful shutdown complete")
}

// closeDatabases closes all database connections
func (l *Lifecycle) closeDatabases(c *Container, log *logger.Logger) {
	if c.PG != nil {
		if err := c.PG.Close(); err != nil {
			log.Errorw("Postgres close failed", "error", err)
		}
	}

	if c.CH != nil {
		if err := c.CH.Close(); err != nil {
			log.Errorw("ClickHouse close failed", "error", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Errorw("Redis close failed", "error", err)
		}
	}

	log.Info("✓ Database connections closed")
}
