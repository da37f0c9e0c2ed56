package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

/*
Logger returns the logger of the command line: a development one writing
debug messages if verbose is set, a production one otherwise.
*/
func (rcc *rootCmdConfig) Logger() *zap.Logger {
	if rcc.logger != nil {
		return rcc.logger
	}
	var err error
	if rcc.verbose {
		rcc.logger, err = zap.NewDevelopment()
	} else {
		rcc.logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		rcc.logger = zap.NewNop()
	}
	return rcc.logger
}

func (rcc *rootCmdConfig) exit(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	if rcc.logger != nil {
		rcc.logger.Sync()
	}
	os.Exit(code)
}
