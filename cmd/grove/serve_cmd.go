package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbanos/grove/config"
	"github.com/pbanos/grove/server"
)

type serveCmdConfig struct {
	*modelCmdConfig
	forestInput string
	address     string
}

func serveCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &serveCmdConfig{modelCmdConfig: &modelCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long:  `Serve the predictions of a grown forest over HTTP until interrupted`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.exit(1, err)
			}
			err = config.dispatch(
				func(m *regressionModel) error { return serve(config, m) },
				func(m *competingRiskModel) error { return serve(config, m) },
			)
			if err != nil {
				config.exit(2, err)
			}
		},
	}
	config.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.address), "address", "a", "", "address to listen on (overrides the configuration)")
	return cmd
}

func (scc *serveCmdConfig) Validate() error {
	if scc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	return scc.modelCmdConfig.Validate()
}

func serve[Y comparable, R, P any](scc *serveCmdConfig, m *model[Y, R, P]) error {
	ctx := scc.Context()
	logger := scc.Logger()
	c, err := config.Load(scc.configPath)
	if err != nil {
		return err
	}
	address := c.Server.Address
	if scc.address != "" {
		address = scc.address
	}
	covariates, err := scc.covariates()
	if err != nil {
		return err
	}
	forest, err := loadForest(scc.forestInput, covariates, m.forestCombiner)
	if err != nil {
		return err
	}
	if !scc.verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{Addr: address, Handler: server.New(forest, c.Server.Workers, logger)}
	errs := make(chan error, 1)
	go func() {
		logger.Info("serving predictions", zap.String("address", address), zap.Int("trees", len(forest.Trees)))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(sctx)
	if err != nil {
		return err
	}
	err = <-errs
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
