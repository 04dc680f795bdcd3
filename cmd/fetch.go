package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/logger"
	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch vacancy pages from the MagangHub API and save them as JSON snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return fetch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringP("dir", "D", "", "directory to save pages into (default: <data-dir>/prov_<provinsi>, or the data dir)")
	fetchCmd.Flags().Int("start-page", 1, "page to start from")
	fetchCmd.Flags().Int("page-size", 100, "records requested per page")
	fetchCmd.Flags().Int("provinsi", 0, "kode_provinsi to restrict the fetch to, 0 for all")
	fetchCmd.Flags().Int("max-pages", 0, "stop after saving this many pages, 0 for no cap")
	fetchCmd.Flags().Int("delay-ms", 0, "pause between page requests in milliseconds")
}

func fetch(cmd *cobra.Command) error {
	ctx := context.Background()

	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	startPage, _ := flags.GetInt("start-page")
	pageSize, _ := flags.GetInt("page-size")
	provinsi, _ := flags.GetInt("provinsi")
	maxPages, _ := flags.GetInt("max-pages")
	delayMS, _ := flags.GetInt("delay-ms")

	if dir == "" {
		dir = config.DataDir
		if provinsi > 0 {
			dir = filepath.Join(config.DataDir, fmt.Sprintf("prov_%d", provinsi))
		}
	}

	client := maganghub.New(ctx, logg)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	applyFetchConfig(client, config.Fetch)

	delay := time.Duration(delayMS) * time.Millisecond
	if delay == 0 && config.Fetch != nil && config.Fetch.DelayMS > 0 {
		delay = time.Duration(config.Fetch.DelayMS) * time.Millisecond
	}

	logg.Info("starting the fetch",
		zap.String("dir", dir),
		zap.Int("start_page", startPage),
		zap.Int("provinsi", provinsi),
	)

	saved, err := client.ScrapeAll(maganghub.ScrapeOptions{
		Dir:          dir,
		StartPage:    startPage,
		PageSize:     pageSize,
		KodeProvinsi: provinsi,
		MaxPages:     maxPages,
		Delay:        delay,
	})
	if err != nil {
		return fmt.Errorf("fetch stopped after %d pages: %w", saved, err)
	}

	logg.Info("fetch finished", zap.Int("pages_saved", saved))
	return nil
}

func applyFetchConfig(client *maganghub.Client, cfg *FetchConfig) {
	if cfg == nil {
		return
	}
	if cfg.BaseURL != "" {
		client.APIURL = cfg.BaseURL
	}
	if cfg.TimeoutSec > 0 {
		client.HTTPClient.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	if cfg.MaxRetries > 0 {
		client.MaxRetries = cfg.MaxRetries
	}
	if cfg.BackoffMS > 0 {
		client.Backoff = time.Duration(cfg.BackoffMS) * time.Millisecond
	}
}
