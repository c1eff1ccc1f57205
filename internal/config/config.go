package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the tool configuration, read from tfgql.yaml and TFGQL_* env vars.
type Config struct {
	Migrate MigrateConfig `mapstructure:"migrate"`
	Backend BackendConfig `mapstructure:"backend"`
	Log     LogConfig     `mapstructure:"log"`
}

type MigrateConfig struct {
	ResourceType string   `mapstructure:"resource_type"`
	Fields       []string `mapstructure:"fields"`
}

type BackendConfig struct {
	Type   string            `mapstructure:"type"`
	Config map[string]string `mapstructure:"config"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the configuration from file and environment variables. A missing
// config file is not an error; defaults apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".tfgql"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("tfgql")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TFGQL")
	v.AutomaticEnv()

	v.SetDefault("migrate.resource_type", "graphql_mutation")
	v.SetDefault("migrate.fields", []string{
		"mutation_variables",
		"read_query_variables",
		"delete_mutation_variables",
	})
	v.SetDefault("backend.type", "local")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
