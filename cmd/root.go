package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "mh-finder"

	defaultDataDir = "data"
)

type Config struct {
	DataDir   string        `mapstructure:"data-dir"`
	UserAgent string        `mapstructure:"user-agent"`
	Fetch     *FetchConfig  `mapstructure:"fetch"`
	Server    *ServerConfig `mapstructure:"server"`
}

type FetchConfig struct {
	BaseURL    string `mapstructure:"base-url"`
	TimeoutSec int    `mapstructure:"timeout-sec"`
	MaxRetries int    `mapstructure:"max-retries"`
	BackoffMS  int    `mapstructure:"backoff-ms"`
	DelayMS    int    `mapstructure:"delay-ms"`
}

type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	DefaultProvince string `mapstructure:"default-province"`
	ReadTimeoutSec  int    `mapstructure:"read-timeout-sec"`
	WriteTimeoutSec int    `mapstructure:"write-timeout-sec"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mh-finder is a simple cli for fetching and searching saved MagangHub vacancy pages",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("data-dir", "MH_DATA_DIR"); err != nil {
		log.Fatalf("binding MH_DATA_DIR environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mh-finder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		// We can't proceed if an explicitly given config file parsed with error.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// The config file is optional for every command.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.DataDir == "" {
		config.DataDir = defaultDataDir
	}

	return config, nil
}
