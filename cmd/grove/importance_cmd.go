package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/pbanos/grove/importance"
)

type importanceCmdConfig struct {
	*modelCmdConfig
	forestInput string
	dataInput   string
	seed        int64
}

func importanceCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &importanceCmdConfig{modelCmdConfig: &modelCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Measure the importance of the covariates of a forest",
		Long:  `Measure how much the error of a forest's predictions for a held-out set of data increases when the values of each covariate are permuted`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.exit(1, err)
			}
			err = config.dispatch(
				func(m *regressionModel) error { return measureImportance(config, m) },
				func(m *competingRiskModel) error { return measureImportance(config, m) },
			)
			if err != nil {
				config.exit(2, err)
			}
		},
	}
	config.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with held-out rows (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 1, "seed of the permutations")
	return cmd
}

func (icc *importanceCmdConfig) Validate() error {
	if icc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	return icc.modelCmdConfig.Validate()
}

func measureImportance[Y comparable, R, P any](icc *importanceCmdConfig, m *model[Y, R, P]) error {
	ctx := icc.Context()
	covariates, err := icc.covariates()
	if err != nil {
		return err
	}
	forest, err := loadForest(icc.forestInput, covariates, m.forestCombiner)
	if err != nil {
		return err
	}
	rows, err := readRows(ctx, icc.dataInput, icc.table, forest.Covariates, m.parser)
	if err != nil {
		return fmt.Errorf("reading held-out rows: %w", err)
	}
	c := &importance.Calculator[Y, P]{
		Predictor:       forest,
		ErrorCalculator: m.errorCalculator,
		Rows:            rows,
		Rand:            rand.New(rand.NewSource(icc.seed)),
	}
	importances, err := c.CalculateAll(ctx, forest.Covariates)
	if err != nil {
		return err
	}
	order := make([]int, len(importances))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) bool {
		return importances[a] > importances[b]
	})
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("COVARIATE IMPORTANCE")
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Importance", Align: text.AlignRight, AlignHeader: text.AlignCenter}})
	t.AppendHeader(table.Row{"Covariate", "Type", "Importance"})
	for _, i := range order {
		cov := forest.Covariates[i]
		t.AppendRow(table.Row{cov.Name(), cov.Kind(), fmt.Sprintf("%.6g", importances[i])})
	}
	t.AppendFooter(table.Row{"Rows", "", len(rows)})
	t.Render()
	return nil
}
