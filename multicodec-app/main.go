package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/compose-network/multicodec/multicodec-app/config"
	"github.com/compose-network/multicodec/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	cfgFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "multicodec",
		Short:         "Codec-prefix framing tool",
		Long:          "Tag payloads with a self-describing multicodec prefix, inspect and strip it, or serve the framing API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file path (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "enable pretty logging")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newFrameCmd(opts),
		newInspectCmd(),
		newStripCmd(),
		newCodecsCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the framing HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runApp(cmd, cfg)
		},
	}

	cmd.Flags().String("listen-addr", "", "API listen address")
	cmd.Flags().Int64("max-body-bytes", 0, "maximum request body size")
	cmd.Flags().Bool("cors", false, "enable permissive CORS")
	cmd.Flags().Bool("metrics", false, "enable metrics")
	cmd.Flags().String("metrics-addr", "", "metrics listen address")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "multicodec\n")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func runApp(cmd *cobra.Command, cfg *config.Config) error {
	logger := log.New(cfg.Log.Level, cfg.Log.Pretty)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("go_version", runtime.Version()).
		Msg("Build information")

	logger.Info().
		Str("listen_addr", cfg.API.ListenAddr).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Str("metrics_addr", cfg.Metrics.ListenAddr).
		Str("log_level", cfg.Log.Level).
		Str("default_codec", cfg.Codec.Default).
		Msg("Configuration loaded")

	application, err := NewApp(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return application.Run(cmd.Context())
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd, cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if f := cmd.Flag("log-pretty"); f != nil && f.Changed {
		cfg.Log.Pretty, _ = cmd.Flags().GetBool("log-pretty")
	}

	if f := cmd.Flag("listen-addr"); f != nil && f.Changed {
		cfg.API.ListenAddr, _ = cmd.Flags().GetString("listen-addr")
	}
	if f := cmd.Flag("max-body-bytes"); f != nil && f.Changed {
		cfg.API.MaxBodyBytes, _ = cmd.Flags().GetInt64("max-body-bytes")
	}
	if f := cmd.Flag("cors"); f != nil && f.Changed {
		cfg.API.EnableCORS, _ = cmd.Flags().GetBool("cors")
	}

	if f := cmd.Flag("metrics"); f != nil && f.Changed {
		cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
	}
	if f := cmd.Flag("metrics-addr"); f != nil && f.Changed {
		cfg.Metrics.ListenAddr, _ = cmd.Flags().GetString("metrics-addr")
	}

	if f := cmd.Flag("codec"); f != nil && f.Changed {
		cfg.Codec.Default, _ = cmd.Flags().GetString("codec")
	}
}
