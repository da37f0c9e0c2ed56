package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbanos/grove/tree"
)

type graphCmdConfig struct {
	*modelCmdConfig
	forestInput string
	output      string
	treeIndex   int
}

func graphCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &graphCmdConfig{modelCmdConfig: &modelCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw a tree of a forest",
		Long:  `Write a tree of a grown forest as a Graphviz DOT graph`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.exit(1, err)
			}
			err = config.dispatch(
				func(m *regressionModel) error { return graph(config, m) },
				func(m *competingRiskModel) error { return graph(config, m) },
			)
			if err != nil {
				config.exit(2, err)
			}
		},
	}
	config.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the DOT graph will be written (defaults to STDOUT)")
	cmd.PersistentFlags().IntVarP(&(config.treeIndex), "tree", "t", 0, "index of the tree to draw")
	return cmd
}

func (gcc *graphCmdConfig) Validate() error {
	if gcc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	if gcc.treeIndex < 0 {
		return fmt.Errorf("tree index cannot be negative")
	}
	return gcc.modelCmdConfig.Validate()
}

func graph[Y comparable, R, P any](gcc *graphCmdConfig, m *model[Y, R, P]) error {
	covariates, err := gcc.covariates()
	if err != nil {
		return err
	}
	forest, err := loadForest(gcc.forestInput, covariates, m.forestCombiner)
	if err != nil {
		return err
	}
	if gcc.treeIndex >= len(forest.Trees) {
		return fmt.Errorf("the forest has %d trees, cannot draw tree %d", len(forest.Trees), gcc.treeIndex)
	}
	f := os.Stdout
	if gcc.output != "" {
		f, err = os.Create(gcc.output)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	return tree.WriteDOT(forest.Trees[gcc.treeIndex], fmt.Sprintf("tree%d", gcc.treeIndex), f)
}
