package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"ewintr.nl/vidqa/handler"
	"ewintr.nl/vidqa/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

type pipelineFactory func(ctx context.Context, cfg Config, logger *slog.Logger) (handler.Pipeline, error)

func buildPipeline(ctx context.Context, cfg Config, logger *slog.Logger) (handler.Pipeline, error) {
	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("unable to read .env file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := newRootCmd(logger, buildPipeline).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, build pipelineFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "vidqa",
		Short:        "Answer questions about YouTube videos from their transcripts",
		SilenceUsage: true,
	}

	var port int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), port, build, logger)
		},
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: from API_PORT env)")

	var lang string
	askCmd := &cobra.Command{
		Use:   "ask <url> <question>",
		Short: "Ask a question about a video",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args[0], strings.Join(args[1:], " "), lang, build, logger)
		},
	}
	askCmd.Flags().StringVar(&lang, "lang", "", "transcript language (default: from DEFAULT_LANGUAGE env)")

	videoCmd := &cobra.Command{
		Use:   "video <url>",
		Short: "Show the title, thumbnail and transcripts of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideo(cmd, args[0], build, logger)
		},
	}

	rootCmd.AddCommand(serveCmd, askCmd, videoCmd)

	return rootCmd
}

func runServe(ctx context.Context, port int, build pipelineFactory, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	pipeline, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("unable to create pipeline", slog.String("error", err.Error()))
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.NewServer(pipeline, storage.NewMemory(cfg.SessionMaxExchanges, cfg.SessionMax), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()
	logger.Info("http server started", slog.Int("port", cfg.Port), slog.String("generator", cfg.Backend))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("unable to shut down http server", slog.String("error", err.Error()))
	}
	logger.Info("service stopped")

	return nil
}

func runAsk(cmd *cobra.Command, rawURL, question, lang string, build pipelineFactory, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	res := pipeline.Ask(cmd.Context(), rawURL, question, lang)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title: %s\n", res.View.Title)
	if res.View.Thumbnail != "" {
		fmt.Fprintf(out, "Thumbnail: %s\n", res.View.Thumbnail)
	}
	if res.Notice != "" {
		fmt.Fprintf(out, "Note: %s\n", res.Notice)
	}
	fmt.Fprintf(out, "\n%s\n", res.Answer.Sanitized)

	return nil
}

func runVideo(cmd *cobra.Command, rawURL string, build pipelineFactory, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	view := pipeline.Load(cmd.Context(), rawURL)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title: %s\n", view.Title)
	if view.Thumbnail != "" {
		fmt.Fprintf(out, "Thumbnail: %s\n", view.Thumbnail)
	}
	for _, lang := range view.Transcripts.Languages() {
		fmt.Fprintf(out, "Transcript %s: %d characters\n", lang, len(view.Transcripts[lang]))
	}

	return nil
}
