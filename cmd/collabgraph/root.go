package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/app"
	"github.com/rmax-ai/collabgraph/pkg/config"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logJSON    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "collabgraph",
		Short: "Explore artist collaboration networks",
		Long: `collabgraph builds multi-level networks of artists who share songwriting
credits, starting from a seed artist and following the most frequent coauthors.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $COLLABGRAPH_CONFIG)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit JSON logs")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newExpandCmd(opts),
		newArtistCmd(opts),
		newSongsCmd(opts),
		newTopCmd(opts),
		newFetchCmd(opts),
		newFiltersCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

// loadConfig reads the config file and environment, then applies the
// logging flags.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = o.logJSON
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openApp wires the catalog, expander and snapshot store. The returned
// cleanup closes external connections and flushes the logger.
func (o *rootOptions) openApp(cmd *cobra.Command) (*app.App, func(), error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			log.Warn("app_close_failed", zap.Error(err))
		}
		_ = log.Sync()
	}
	return a, cleanup, nil
}
