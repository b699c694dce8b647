package main

import (
	"fmt"
	"os"
	"path/filepath"

	"notewise/internal/adapter/boltcache"
	"notewise/internal/adapter/embedding"
	"notewise/internal/adapter/extractor"
	"notewise/internal/adapter/llm"
	"notewise/internal/config"
	"notewise/internal/domain"
	"notewise/internal/logger"
	"notewise/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every study command needs. It is built lazily so that
// commands like "cache purge" never dial an LLM provider.
type app struct {
	cfg      *config.Config
	cache    *boltcache.BoltCache
	flows    service.StudyFlowService
	exporter service.ExportService
}

type globalOptions struct {
	cachePath string
	noCache   bool
	provider  string
	model     string
	refresh   bool
	verbose   bool
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".notewise", "cache.db")
	}
	return filepath.Join(home, ".notewise", "cache.db")
}

func (o *globalOptions) openCache() (*boltcache.BoltCache, error) {
	if o.noCache {
		return nil, nil
	}
	return boltcache.Open(o.cachePath)
}

func (o *globalOptions) newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.provider != "" {
		cfg.LLM.Provider = o.provider
	}
	if o.model != "" {
		cfg.LLM.Model = o.model
	}
	cfg.ResolveProvider()

	level := "error"
	if o.verbose {
		level = "debug"
	}
	if err := logger.Initialize(config.LoggerConfig{Env: "development", Level: level}); err != nil {
		return nil, err
	}

	bolt, err := o.openCache()
	if err != nil {
		return nil, err
	}
	var cache domain.Cache
	if bolt != nil {
		cache = bolt
	}

	closeOnErr := func(err error) (*app, error) {
		if bolt != nil {
			_ = bolt.Close()
		}
		return nil, err
	}

	embedder, err := embedding.NewEmbeddingService(cfg.Embedding, cache,
		cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Embedding, 0))
	if err != nil {
		return closeOnErr(err)
	}

	client, err := llm.NewClient(cmd.Context(), cfg.LLM)
	if err != nil {
		return closeOnErr(err)
	}
	logger.Get().Debug("LLM client ready", zap.String("provider", client.Name()), zap.String("cache", o.cachePath))

	flows := service.NewStudyFlowService(
		client,
		extractor.NewPDFExtractor(),
		service.NewContextSelector(embedder, cfg.LLM.MaxContextChars, cfg.Embedding.TopK),
		cache,
		cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.FlowResult, 0),
	)

	return &app{
		cfg:      cfg,
		cache:    bolt,
		flows:    flows,
		exporter: service.NewExportService(),
	}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Get().Warn("Failed to close cache", zap.Error(err))
		}
	}
	_ = logger.Sync()
}

// describeError prints the user facing message of domain errors.
func describeError(err error, verbose bool) string {
	if de, ok := domain.AsDomainError(err); ok {
		if verbose && de.Cause != nil {
			return fmt.Sprintf("%s (%v)", de.Message, de.Cause)
		}
		return de.Message
	}
	return err.Error()
}

func main() {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "notewise",
		Short:         "Study a PDF from the terminal: summaries, quizzes, flashcards, notes and chat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cachePath, "cache", defaultCachePath(), "path of the local result cache")
	root.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the local result cache")
	root.PersistentFlags().StringVar(&opts.provider, "provider", "", "LLM provider: ollama|openai|gemini (overrides config)")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "model name (overrides config)")
	root.PersistentFlags().BoolVar(&opts.refresh, "refresh", false, "regenerate results instead of reusing cached ones")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		extractCmd(opts),
		summarizeCmd(opts),
		quizCmd(opts),
		flashcardsCmd(opts),
		notesCmd(opts),
		askCmd(opts),
		chatCmd(opts),
		videosCmd(opts),
		cacheCmd(opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describeError(err, opts.verbose))
		os.Exit(1)
	}
}
