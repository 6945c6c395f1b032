package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/app"
	"github.com/yishak-cs/course-recommender/pkg/helper"
	"github.com/yishak-cs/course-recommender/pkg/logger"
)

type options struct {
	configPath string
	verbose    bool
}

// appBuilder is replaced in tests
var appBuilder = buildApp

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "coursectl",
		Short: "Query the course recommender from the command line",
		Long: `coursectl runs the course recommendation pipeline locally.

It uses the same configuration as the server: a config file plus
COURSEMATCH_* and ANTHROPIC_API_KEY environment variables. Results are
written to stdout as JSON.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline activity to stderr")

	cmd.AddCommand(newAskCommand(opts))
	cmd.AddCommand(newParseCommand(opts))
	cmd.AddCommand(newSearchCommand(opts))
	cmd.AddCommand(newSubjectsCommand(opts))

	return cmd
}

func buildApp(_ context.Context, opts *options) (*app.App, error) {
	cfg, err := helper.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	zapLogger := zap.NewNop()
	if opts.verbose {
		cfg.Log.Format = "console"
		if zapLogger, err = logger.NewLogger(&cfg.Log); err != nil {
			return nil, err
		}
	}

	return app.New(cfg, zapLogger)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
