package grove

import (
	"fmt"
	"runtime"
)

/*
Settings holds the parameters that control how the trees of a forest are
grown.
*/
type Settings struct {
	// NodeSize is the largest number of rows a node can have and still be
	// made terminal for its size alone
	NodeSize int `mapstructure:"nodeSize" yaml:"nodeSize" json:"nodeSize"`
	// MaxNodeDepth is the depth at which nodes are always terminal, 0 for no limit
	MaxNodeDepth int `mapstructure:"maxNodeDepth" yaml:"maxNodeDepth" json:"maxNodeDepth"`
	// NumberOfSplits is the number of candidate splits requested to each
	// covariate at each node, 0 for all of them
	NumberOfSplits int `mapstructure:"numberOfSplits" yaml:"numberOfSplits" json:"numberOfSplits"`
	// MTry is the number of covariates sampled at each node, 0 for all of them
	MTry int `mapstructure:"mtry" yaml:"mtry" json:"mtry"`
	// CheckNodePurity makes nodes whose responses are all equal terminal
	CheckNodePurity bool `mapstructure:"checkNodePurity" yaml:"checkNodePurity" json:"checkNodePurity"`
	// NTree is the number of trees of a forest
	NTree int `mapstructure:"ntree" yaml:"ntree" json:"ntree"`
	// Seed is the master seed every random stream of a forest derives from
	Seed int64 `mapstructure:"seed" yaml:"seed" json:"seed"`
	// Workers is the number of trees grown concurrently
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
	// Bootstrap makes every tree grow from a bootstrap sample of the rows
	Bootstrap bool `mapstructure:"bootstrap" yaml:"bootstrap" json:"bootstrap"`
}

/*
DefaultSettings returns the settings used when none are given: nodes of up to
5 rows, unlimited depth, every candidate split of every covariate, node purity
checks, 100 bootstrapped trees and as many workers as CPUs.
*/
func DefaultSettings() Settings {
	return Settings{
		NodeSize:        5,
		CheckNodePurity: true,
		NTree:           100,
		Seed:            1,
		Workers:         runtime.NumCPU(),
		Bootstrap:       true,
	}
}

/*
Validate returns an error describing the first invalid parameter of the
settings, or nil if they are all valid.
*/
func (s Settings) Validate() error {
	if s.NodeSize < 1 {
		return fmt.Errorf("nodeSize must be at least 1, got %d", s.NodeSize)
	}
	if s.MaxNodeDepth < 0 {
		return fmt.Errorf("maxNodeDepth cannot be negative, got %d", s.MaxNodeDepth)
	}
	if s.NumberOfSplits < 0 {
		return fmt.Errorf("numberOfSplits cannot be negative, got %d", s.NumberOfSplits)
	}
	if s.MTry < 0 {
		return fmt.Errorf("mtry cannot be negative, got %d", s.MTry)
	}
	if s.NTree < 1 {
		return fmt.Errorf("ntree must be at least 1, got %d", s.NTree)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	return nil
}
