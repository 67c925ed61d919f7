package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"backup-archiver/internal/app"
	"backup-archiver/internal/config"
	"backup-archiver/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "backup-archiver",
	Short: "Move aged backups from a hot bucket to a cold archive bucket",
	Long: `A concurrent archival tool for date-prefixed backup objects.
Backups older than the retention threshold are copied to the archive
bucket, verified, and removed from the source bucket.`,
	RunE: runArchival,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "config file")

	// Storage flags
	rootCmd.Flags().String("endpoint", "", "storage endpoint")
	rootCmd.Flags().String("access-key", "", "storage access key")
	rootCmd.Flags().String("secret-key", "", "storage secret key")
	rootCmd.Flags().Bool("secure", true, "use HTTPS for storage")
	rootCmd.Flags().String("source-bucket", "", "hot bucket holding current backups")
	rootCmd.Flags().String("target-bucket", "", "cold bucket receiving archived backups")

	// Archival flags
	rootCmd.Flags().Bool("dry-run", false, "preview actions without executing them")
	rootCmd.Flags().Int("days", 30, "retention age override in days")
	rootCmd.Flags().Int("max-workers", 4, "number of parallel workers")
	rootCmd.Flags().String("journal", "", "sqlite outcome journal file (empty disables)")
	rootCmd.Flags().String("metrics-listen", "", "prometheus listen address (empty disables)")
	rootCmd.Flags().String("log-level", "info", "log level (debug/info/warn/error)")
	rootCmd.Flags().String("log-dir", "", "directory for dated log files (empty disables)")
}

func runArchival(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	archiver, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create archiver: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	err = archiver.Run(ctx)

	if closeErr := archiver.Close(); closeErr != nil {
		log.Error("Error closing archiver", zap.Error(closeErr))
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
