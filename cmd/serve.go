package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/logger"
	"github.com/maganghub-tools/mh-finder/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web filter page over saved vacancy pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("default-province", "", "province subdirectory selected when none is given")
}

func serve(cmd *cobra.Command) error {
	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	cfg := serverConfig(cmd, config)

	logg.Info("starting the mh-finder web server",
		zap.String("version", version),
		zap.String("addr", cfg.Addr),
		zap.String("data_root", cfg.DataRoot),
	)

	srv := server.New(cfg, logger.WithFields(logg, zap.String("component", "http")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func serverConfig(cmd *cobra.Command, config *Config) server.Config {
	cfg := server.Config{
		DataRoot:        config.DataDir,
		DefaultProvince: "prov_33",
	}

	if sc := config.Server; sc != nil {
		cfg.Addr = sc.Addr
		if sc.DefaultProvince != "" {
			cfg.DefaultProvince = sc.DefaultProvince
		}
		if sc.ReadTimeoutSec > 0 {
			cfg.ReadTimeout = time.Duration(sc.ReadTimeoutSec) * time.Second
		}
		if sc.WriteTimeoutSec > 0 {
			cfg.WriteTimeout = time.Duration(sc.WriteTimeoutSec) * time.Second
		}
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if prov, _ := cmd.Flags().GetString("default-province"); prov != "" {
		cfg.DefaultProvince = prov
	}

	return cfg
}
