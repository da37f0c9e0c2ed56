package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/dataset/inputsample"
)

type predictCmdConfig struct {
	*modelCmdConfig
	forestInput string
	dataInput   string
	output      string
	outputTable string
	interactive bool
	workers     int
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{modelCmdConfig: &modelCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict responses for a set of data",
		Long:  `Use a grown forest to predict the responses of a set of data, or of a single sample answering questions about its covariates`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.exit(1, err)
			}
			err = config.dispatch(
				func(m *regressionModel) error { return predict(config, m) },
				func(m *competingRiskModel) error { return predict(config, m) },
			)
			if err != nil {
				config.exit(2, err)
			}
		},
	}
	config.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the rows to predict (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to an output CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to which the rows will be written along with their predictions (defaults to STDOUT, as CSV)")
	cmd.PersistentFlags().StringVar(&(config.outputTable), "output-table", "predictions", "table or collection to write predictions to when the output is a database")
	cmd.PersistentFlags().BoolVar(&(config.interactive), "interactive", false, "predict a single sample whose covariate values are asked for on STDOUT and read from STDIN")
	cmd.PersistentFlags().IntVar(&(config.workers), "workers", 0, "number of rows predicted at a time (defaults to 0: as many as CPUs)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	return pcc.modelCmdConfig.Validate()
}

func predict[Y comparable, R, P any](pcc *predictCmdConfig, m *model[Y, R, P]) error {
	ctx := pcc.Context()
	covariates, err := pcc.covariates()
	if err != nil {
		return err
	}
	forest, err := loadForest(pcc.forestInput, covariates, m.forestCombiner)
	if err != nil {
		return err
	}
	if pcc.interactive {
		sample := inputsample.New(0, os.Stdin, forest.Covariates, inputsample.WriterValueRequester{W: os.Stdout})
		p, err := forest.Predict(sample)
		if err != nil {
			return err
		}
		values := m.format(p)
		for i, column := range m.columns {
			fmt.Printf("%s: %s\n", column, values[i])
		}
		return nil
	}
	rows, err := readRows(ctx, pcc.dataInput, pcc.table, forest.Covariates, ignoreResponse)
	if err != nil {
		return fmt.Errorf("reading rows: %w", err)
	}
	predictions, err := forest.PredictAll(ctx, dataset.Samples(rows), pcc.workers)
	if err != nil {
		return err
	}
	header := make([]string, 0, len(forest.Covariates)+len(m.columns))
	for _, c := range forest.Covariates {
		header = append(header, c.Name())
	}
	header = append(header, m.columns...)
	records := make([]dataset.Record, len(rows))
	for i, r := range rows {
		records[i], err = dataset.RecordFromSample(r, forest.Covariates)
		if err != nil {
			return err
		}
		for j, v := range m.format(predictions[i]) {
			records[i][m.columns[j]] = v
		}
	}
	n, err := writeRecords(ctx, pcc.output, pcc.outputTable, header, records)
	if err != nil {
		return fmt.Errorf("writing predictions: %w", err)
	}
	pcc.Logger().Debug("predicted rows", zap.Int("rows", n))
	return nil
}
