// retrainctl runs one administrative retrain cycle and exits. Intended for
// operators and CI jobs; the long-running service reaches the same code path
// through POST /v1/admin/retrain.
package main

import (
	"fmt"
	"os"

	"cadence/internal/bootstrap"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

func main() {
	c := bootstrap.NewContainer()

	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitServices()
	defer func() {
		c.Cancel()
		_ = logger.Sync()
	}()

	log := c.Log

	model, err := c.Services.Training.Retrain(c.Context)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrTrainingInProgress):
			log.Error("A retrain is already in progress")
		case errors.Is(err, errors.ErrInsufficientData):
			log.Error("Not enough valid training samples, previous model retained")
		default:
			log.Errorf("Retrain failed: %v", err)
		}
		os.Exit(1)
	}

	fmt.Printf("trained model %s from %d samples\n", model.Version, model.TrainingSamples)
}
