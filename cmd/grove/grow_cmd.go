package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/config"
	"github.com/pbanos/grove/dataset"
)

type growCmdConfig struct {
	*modelCmdConfig
	dataInput string
	output    string
	holdout   float64
	ntree     int
	workers   int
	seed      int64
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{modelCmdConfig: &modelCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a forest from a set of data",
		Long:  `Grow a forest from a set of data to predict a regression or competing risk response.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.exit(1, err)
			}
			err = config.dispatch(
				func(m *regressionModel) error { return grow(cmd, config, m) },
				func(m *competingRiskModel) error { return grow(cmd, config, m) },
			)
			if err != nil {
				config.exit(2, err)
			}
		},
	}
	config.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to use to grow the forest (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the grown forest will be written in JSON format (defaults to STDOUT)")
	cmd.PersistentFlags().Float64Var(&(config.holdout), "holdout", 0, "fraction of the rows to keep out of training to measure the error of the forest")
	cmd.PersistentFlags().IntVar(&(config.ntree), "ntree", 0, "number of trees of the forest (overrides the configuration)")
	cmd.PersistentFlags().IntVar(&(config.workers), "workers", 0, "number of trees grown at a time (overrides the configuration)")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 0, "seed of the forest (overrides the configuration)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.holdout < 0 || gcc.holdout >= 1 {
		return fmt.Errorf("holdout must be between 0 and 1, got %g", gcc.holdout)
	}
	return gcc.modelCmdConfig.Validate()
}

/*
settings loads the configuration and applies the flags that override its
trainer settings.
*/
func (gcc *growCmdConfig) settings(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(gcc.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("ntree") {
		c.Trainer.NTree = gcc.ntree
	}
	if cmd.Flags().Changed("workers") {
		c.Trainer.Workers = gcc.workers
	}
	if cmd.Flags().Changed("seed") {
		c.Trainer.Seed = gcc.seed
	}
	return c, c.Validate()
}

func grow[Y comparable, R, P any](cmd *cobra.Command, gcc *growCmdConfig, m *model[Y, R, P]) error {
	ctx := gcc.Context()
	logger := gcc.Logger()
	c, err := gcc.settings(cmd)
	if err != nil {
		return err
	}
	covariates, err := gcc.covariates()
	if err != nil {
		return err
	}
	rows, err := readRows(ctx, gcc.dataInput, gcc.table, covariates, m.parser)
	if err != nil {
		return fmt.Errorf("reading training rows: %w", err)
	}
	var heldOut []*dataset.Row[Y]
	if gcc.holdout > 0 {
		heldOut, rows = dataset.Split(rows, gcc.holdout, rand.New(rand.NewSource(c.Trainer.Seed)))
	}
	ts := openStore[R](c.Store, covariates)
	defer ts.Close(ctx)
	ft := &grove.ForestTrainer[Y, R, P]{
		TreeTrainer: &grove.TreeTrainer[Y, R]{
			Covariates:     covariates,
			Combiner:       m.combiner,
			Differentiator: m.differentiator,
			Settings:       c.Trainer,
			Logger:         logger,
		},
		Combiner: m.forestCombiner,
		Store:    ts,
		Logger:   logger,
	}
	forest, err := ft.Train(ctx, rows)
	if err != nil {
		return fmt.Errorf("growing the forest: %w", err)
	}
	if len(heldOut) > 0 {
		predictions, err := forest.PredictAll(ctx, dataset.Samples(heldOut), c.Trainer.Workers)
		if err != nil {
			return fmt.Errorf("predicting held-out rows: %w", err)
		}
		logger.Info("held-out error",
			zap.Int("rows", len(heldOut)),
			zap.Float64("error", m.errorCalculator.AverageError(dataset.Responses(heldOut), predictions)),
		)
	}
	return writeForest(gcc.output, forest)
}
