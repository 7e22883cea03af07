package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/lovequiz/internal/playthrough"
	"github.com/okian/lovequiz/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfg       playthrough.Config
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:          "quiz-play",
	Short:        "Play love quiz sessions against a running server",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.InitWith(cmd.ErrOrStderr(), logFormat); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		if cfg.Verbose {
			return logger.SetLevelString("debug")
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play complete sessions through the HTTP API and log each snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stats, err := playthrough.Run(cmd.Context(), &cfg)
		if stats != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "sessions: %d completed, %d failed, %d declines (%d duplicates ignored) in %s\n",
				stats.Completed, stats.Failed, stats.Declines, stats.Duplicates, stats.Duration)
		}
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every snapshot")

	runCmd.Flags().StringVar(&cfg.BaseURL, "url", playthrough.DefaultBaseURL, "Base URL of the service")
	runCmd.Flags().StringVar(&cfg.Name, "name", playthrough.DefaultName, "Answer to the name question")
	runCmd.Flags().StringVar(&cfg.Partner, "partner", playthrough.DefaultPartner, "Answer to the partner question")
	runCmd.Flags().IntVar(&cfg.Score, "score", playthrough.DefaultScore, "Affection score to submit")
	runCmd.Flags().IntVar(&cfg.Declines, "declines", playthrough.DefaultDeclines, "Times to dodge the \"no\" button")
	runCmd.Flags().IntVar(&cfg.Sessions, "sessions", 1, "Sessions to play")
	runCmd.Flags().IntVar(&cfg.Workers, "workers", 1, "Sessions played concurrently")
	runCmd.Flags().DurationVar(&cfg.Timeout, "timeout", playthrough.DefaultTimeout, "HTTP request timeout")

	rootCmd.AddCommand(runCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
