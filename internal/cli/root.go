package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/yt-summarizer/internal/bootstrap"
	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/internal/infra/config"
	"github.com/yanqian/yt-summarizer/pkg/logger"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the summarize command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize long transcripts with a chunked, rolling LLM pipeline",
		Long: `summarize splits transcripts into token bounded chunks and folds them into a
single Markdown summary, one model call per chunk.

Example usage:
  summarize transcript.txt                      # Print the summary
  summarize --glob "talks/**/*.txt" --write     # Write <name>.summary.md files
  summarize --url https://youtu.be/dQw4w9WgXcQ  # Fetch captions and summarize
  summarize tokens transcript.txt               # Estimate tokens and chunks`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.configPath != "" {
				os.Setenv("CONFIG_PATH", opts.configPath)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./configs/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	addSummarizeFlags(cmd, opts)
	cmd.AddCommand(newTokensCommand(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure. SIGINT and
// SIGTERM cancel the context, so running summaries stop at the next chunk.
func Execute() {
	if err := executeWithSignals(context.Background(), NewRootCommand()); err != nil {
		os.Exit(1)
	}
}

func executeWithSignals(parent context.Context, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cmd.ExecuteContext(ctx)
}

// newService assembles the summarizer the same way the HTTP app does, minus
// the transport.
func newService(opts *rootOptions) (summarizer.Service, *config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewCLI(opts.verbose)
	counter, err := bootstrap.ProvideTokenCounter(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	generators, err := bootstrap.ProvideGenerators(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	svc := summarizer.NewService(
		bootstrap.ProvideSummaryConfig(cfg),
		counter,
		bootstrap.ProvideTranscriptProvider(cfg, log),
		generators,
		bootstrap.ProvideTemplateStore(cfg, log),
		metrics.Nop{},
		log,
	)
	return svc, cfg, log, nil
}
