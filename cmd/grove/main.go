package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootCmdConfig struct {
	verbose    bool
	configPath string
	logger     *zap.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grove",
		Short: "grove is a tool to grow random forests",
		Long:  `A tool to grow random forests for regression and competing risks from your data, measure the importance of their covariates, and use them to make predictions`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log debug messages in a human readable format")
	rootCmd.PersistentFlags().StringVar(&(config.configPath), "config", "", "path to a YAML configuration file (GROVE_ environment variables override it)")
	rootCmd.AddCommand(
		versionCmd(),
		growCmd(config),
		predictCmd(config),
		importanceCmd(config),
		graphCmd(config),
		serveCmd(config),
	)
	return rootCmd
}

/*
Context returns a context that is cancelled when the process receives an
interrupt or termination signal.
*/
func (rcc *rootCmdConfig) Context() context.Context {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	return rcc.ctx
}
