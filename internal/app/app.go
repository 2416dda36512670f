package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"geosummary/internal/audit"
	"geosummary/internal/config"
	"geosummary/internal/domain"
	"geosummary/internal/httpx"
	slackbot "geosummary/internal/integrations/slack"
	"geosummary/internal/summary"
	"geosummary/internal/util/jsonutil"
	"geosummary/internal/watch"
)

// Main runs the geosummary command line and exits non-zero on failure.
func Main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	verbose bool
	logger  *zap.Logger
}

// NewRootCommand builds the command tree. Each call has its own flag state.
func NewRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "geosummary",
		Short: "Summarize AI-readiness audit reports with a text-generation service",
		Long: `geosummary reads a JSON AI-readiness audit report, sends a bounded
projection of it to the configured text-generation provider and prints a
summary and a prioritized list of recommendations.

Configuration comes from config.yaml (or CONFIG_PATH), a .env file and
environment variables such as LLM_PROVIDER and OPENAI_API_KEY.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if c.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	var post bool
	summarizeCmd := &cobra.Command{
		Use:   "summarize <report.json>",
		Short: "Generate the summary and recommendations for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.summarize(cmd.Context(), cmd.OutOrStdout(), args[0], post)
		},
	}
	summarizeCmd.Flags().BoolVar(&post, "post", false, "Also post the result to the Slack report channel")

	compactCmd := &cobra.Command{
		Use:   "compact <report.json>",
		Short: "Print the compact payload that would be sent to the provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := summary.LoadReport(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), audit.NewCompactor(c.logger).Compact(batch))
		},
	}

	var date string
	extractCmd := &cobra.Command{
		Use:   "extract <report.json>",
		Short: "Print the structured payload for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := summary.LoadReport(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), audit.NewExtractor(c.logger).Extract(batch, date))
		},
	}
	extractCmd.Flags().StringVar(&date, "date", "", "Analysis date to report (default: the report's analysis_date)")

	var schedule string
	watchCmd := &cobra.Command{
		Use:   "watch <report.json>",
		Short: "Re-summarize a report on a cron schedule",
		Long: `Re-summarizes the report whenever the schedule fires and the file has
changed, posting each result to Slack when a bot token and report channel are
configured. The schedule is a 5-field cron expression, e.g. "0 9 * * 1-5".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.watch(cmd.Context(), args[0], schedule)
		},
	}
	watchCmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression (default: watch_schedule from config)")

	root.AddCommand(summarizeCmd, compactCmd, extractCmd, watchCmd)
	return root
}

func (c *cli) setup(ctx context.Context) (config.Config, *summary.Summarizer, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	timeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeout())
	c.logger.Info("config loaded",
		zap.String("source", cfg.Source),
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.LLMModel),
		zap.String("payload_mode", cfg.PayloadMode),
		zap.String("reply_language", cfg.ReplyLanguage),
		zap.Duration("external_http_timeout", timeout),
	)
	s, err := summary.NewFromConfig(ctx, cfg, c.logger)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, s, nil
}

func (c *cli) summarize(ctx context.Context, out io.Writer, path string, post bool) error {
	cfg, s, err := c.setup(ctx)
	if err != nil {
		return err
	}
	var pub *slackbot.Publisher
	if post {
		if pub, err = slackbot.NewPublisher(cfg.SlackBotToken, cfg.ReportChannelID, c.logger); err != nil {
			return err
		}
	}

	res, fileErr := s.SummarizeFile(ctx, path)
	printResult(out, res)
	if fileErr != nil {
		return fileErr
	}
	if pub != nil {
		if _, err := pub.Publish(ctx, "AI readiness summary: "+filepath.Base(path), res); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) watch(ctx context.Context, path, schedule string) error {
	cfg, s, err := c.setup(ctx)
	if err != nil {
		return err
	}
	if schedule == "" {
		schedule = cfg.WatchSchedule
	}
	opts := []watch.Option{watch.WithLocation(cfg.Location), watch.WithLogger(c.logger)}
	if cfg.SlackConfigured() {
		pub, err := slackbot.NewPublisher(cfg.SlackBotToken, cfg.ReportChannelID, c.logger)
		if err != nil {
			return err
		}
		opts = append(opts, watch.WithPublisher(pub))
	} else {
		c.logger.Info("slack not configured, results are only logged")
	}
	w, err := watch.New(path, schedule, s, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printResult(out io.Writer, res domain.ParsedResult) {
	fmt.Fprintf(out, "Summary:\n%s\n\nRecommendations:\n%s\n", res.Summary, res.Recommendations)
}

func printJSON(out io.Writer, v any) error {
	data, err := jsonutil.MarshalNoEscapeIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
