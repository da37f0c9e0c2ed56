/*
Package config loads the configuration of grove from YAML files and GROVE_
prefixed environment variables.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pbanos/grove"
)

const (
	// MemoryStore keeps trees in the process memory
	MemoryStore = "memory"
	// RedisStore keeps trees in a redis server
	RedisStore = "redis"
)

// Config holds the whole configuration of grove
type Config struct {
	Trainer grove.Settings `mapstructure:"trainer"`
	Store   Store          `mapstructure:"store"`
	Server  Server         `mapstructure:"server"`
}

// Store configures where trees are kept while a forest grows
type Store struct {
	Kind      string `mapstructure:"kind"`
	RedisAddr string `mapstructure:"redisAddr"`
	RedisDB   int    `mapstructure:"redisDB"`
	Prefix    string `mapstructure:"prefix"`
}

// Server configures the prediction service
type Server struct {
	Address string `mapstructure:"address"`
	Workers int    `mapstructure:"workers"`
}

/*
Default returns the configuration used for anything not set: the default
trainer settings, an in-memory store and a server listening on :8080.
*/
func Default() Config {
	return Config{
		Trainer: grove.DefaultSettings(),
		Store:   Store{Kind: MemoryStore, RedisAddr: "localhost:6379", Prefix: "grove"},
		Server:  Server{Address: ":8080"},
	}
}

/*
Load takes the path to a YAML configuration file, which may be empty to use
none, and returns the configuration it describes on top of the default one,
with any GROVE_ environment variable overriding both (GROVE_TRAINER_NTREE
for trainer.ntree, for instance). It returns an error if the file cannot be
read or the resulting configuration is invalid.
*/
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix("GROVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading configuration from %s: %w", path, err)
		}
	}
	c := &Config{}
	err := v.Unmarshal(c)
	if err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns an error if the configuration is not valid
func (c *Config) Validate() error {
	err := c.Trainer.Validate()
	if err != nil {
		return fmt.Errorf("invalid trainer settings: %w", err)
	}
	switch c.Store.Kind {
	case MemoryStore:
	case RedisStore:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("redis store requires an address")
		}
	default:
		return fmt.Errorf("unknown store kind %q, expected %s or %s", c.Store.Kind, MemoryStore, RedisStore)
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	t := c.Trainer
	v.SetDefault("trainer.nodeSize", t.NodeSize)
	v.SetDefault("trainer.maxNodeDepth", t.MaxNodeDepth)
	v.SetDefault("trainer.numberOfSplits", t.NumberOfSplits)
	v.SetDefault("trainer.mtry", t.MTry)
	v.SetDefault("trainer.checkNodePurity", t.CheckNodePurity)
	v.SetDefault("trainer.ntree", t.NTree)
	v.SetDefault("trainer.seed", t.Seed)
	v.SetDefault("trainer.workers", t.Workers)
	v.SetDefault("trainer.bootstrap", t.Bootstrap)
	v.SetDefault("store.kind", c.Store.Kind)
	v.SetDefault("store.redisAddr", c.Store.RedisAddr)
	v.SetDefault("store.redisDB", c.Store.RedisDB)
	v.SetDefault("store.prefix", c.Store.Prefix)
	v.SetDefault("server.address", c.Server.Address)
	v.SetDefault("server.workers", c.Server.Workers)
}
