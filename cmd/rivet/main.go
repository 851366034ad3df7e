// Package main provides the rivet CLI entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/localrivet/rivet"
	"github.com/localrivet/rivet/internal/config"
	"github.com/localrivet/rivet/internal/errortypes"
	"github.com/localrivet/rivet/internal/labels"
	"github.com/localrivet/rivet/internal/logger"
	"github.com/localrivet/rivet/internal/permutation"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rivet",
		Short: "rivet - Random Index Vectors over MCP",
		Long: `rivet generates deterministic sparse label vectors for words and
serves vector algebra (combine, scale, permute, similarity) as MCP tools
over stdio. Labels are cached in SQLite or Badger.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFilename, "Path to config file")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rivet v%s (%s)\n", version, commit)
		},
	})

	// Serve command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE:  runServe,
	})

	// Label command
	labelCmd := &cobra.Command{
		Use:   "label [word...]",
		Short: "Print the label vector of each word",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLabel,
	}
	labelCmd.Flags().Int("dims", 0, "Dimensionality (default from config)")
	labelCmd.Flags().Int("k", -1, "Nonzero entries per label (default from config)")
	rootCmd.AddCommand(labelCmd)

	// Perm command
	permCmd := &cobra.Command{
		Use:   "perm",
		Short: "Generate a permutation pair file",
		RunE:  runPerm,
	}
	permCmd.Flags().Int("dims", config.DefaultDimensionality, "Dimensionality")
	permCmd.Flags().Int64("seed", 0, "Random seed")
	permCmd.Flags().String("out", "permutation.yaml", "Output file")
	rootCmd.AddCommand(permCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.InitGlobal(path)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	appLogger := logger.New(logCfg)

	svc, err := rivet.NewService(rivet.ServiceOptions{Config: cfg, Logger: appLogger})
	if err != nil {
		errortypes.LogError(appLogger, err)
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		appLogger.Info("Received shutdown signal, terminating gracefully...")
		if err := svc.Stop(); err != nil {
			errortypes.LogError(appLogger, errortypes.DatabaseError(err, "Error closing store during shutdown"))
			os.Exit(1)
		}
		os.Exit(0)
	}()

	if err := svc.Start(); err != nil {
		errortypes.LogError(appLogger, errortypes.InternalError(err, "MCP server failed"))
		return err
	}
	return svc.Stop()
}

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dims, _ := cmd.Flags().GetInt("dims")
	k, _ := cmd.Flags().GetInt("k")
	if dims <= 0 {
		dims = cfg.Labels.Dimensionality
	}
	if k < 0 {
		k = cfg.Labels.K
	}

	gen := labels.NewGenerator(dims, k)
	if err := gen.Initialize(); err != nil {
		return err
	}
	for _, word := range args {
		v, err := gen.Label(word)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", word, v)
	}
	return nil
}

func runPerm(cmd *cobra.Command, args []string) error {
	dims, _ := cmd.Flags().GetInt("dims")
	seed, _ := cmd.Flags().GetInt64("seed")
	out, _ := cmd.Flags().GetString("out")

	if dims <= 0 {
		return fmt.Errorf("dims must be positive, got %d", dims)
	}
	if err := permutation.Generate(dims, seed).Save(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d-dimensional permutation to %s\n", dims, out)
	return nil
}
