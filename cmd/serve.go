package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/ai/gemini"
	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/learning"
	"github.com/prasukj7-arch/internmatch/internal/logger"
	"github.com/prasukj7-arch/internmatch/internal/recommend"
	"github.com/prasukj7-arch/internmatch/internal/secrets"
	"github.com/prasukj7-arch/internmatch/internal/server"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

const defaultAddress = ":5000"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API over HTTP",
	// The catalog-file key is shared with the recommend command, so the
	// flag is bound per-run instead of in init.
	PreRun: func(cmd *cobra.Command, _ []string) {
		viper.BindPFlag("catalog-file", cmd.Flags().Lookup("catalog"))
		viper.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("catalog", "c", "", "path to the internship catalog CSV")
	serveCmd.Flags().StringP("address", "a", "", "listen address (default "+defaultAddress+")")
}

func serve(_ *cobra.Command) {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting internmatch", zap.String("version", version))

	cat := loadCatalog(config, log)

	st := newStore(config, log)

	generative := newGenerativeAttempt(ctx, config, log)

	engine := recommend.NewEngine(cat, generative, log)

	learner := learning.NewLearner(st, log)
	restoreLearner(learner, config.LearningState, log)

	srv := server.New(engine, learner, st, log)

	address := defaultAddress
	if config.Server != nil && config.Server.Address != "" {
		address = config.Server.Address
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Listen(address); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}

	persistLearner(learner, config.LearningState, log)
}

func loadCatalog(config *Config, log *zap.Logger) *catalog.Catalog {
	if config.CatalogFile == "" {
		log.Fatal("catalog file is required",
			zap.String("hint", "set the 'catalog-file' key or the --catalog flag"))
	}

	cat, err := catalog.LoadCSV(config.CatalogFile)
	if err != nil {
		log.Fatal("loading the catalog", zap.Error(err))
	}

	log.Info("catalog loaded",
		zap.String("file", config.CatalogFile),
		zap.Int("postings", cat.Len()))
	return cat
}

func newStore(config *Config, log *zap.Logger) store.Store {
	if config.Database == nil || config.Database.DSN == "" {
		log.Warn("no database configured, applications will not survive restarts")
		return store.NewMemory()
	}

	st, err := store.NewPostgres(config.Database.DSN)
	if err != nil {
		log.Fatal("connecting to the database", zap.Error(err))
	}

	log.Info("database connected")
	return st
}

// newGenerativeAttempt builds the primary tier, or nil when AI is disabled
// or misconfigured. The engine works without it, on the similarity tier.
func newGenerativeAttempt(ctx context.Context, config *Config, log *zap.Logger) recommend.Attempt {
	if config.AI == nil || !config.AI.Enabled {
		return nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		log.Warn("skipping generative tier", zap.String("reason", "unsupported provider"), zap.String("provider", config.AI.Provider))
		return nil
	}

	if config.AI.Gemini == nil {
		log.Warn("skipping generative tier", zap.String("reason", "gemini configuration is required"))
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		log.Warn("skipping generative tier", zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY"))
		return nil
	}

	genLogger := log.With(
		zap.String("provider", "gemini"),
		zap.String("model", config.AI.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model, config.AI.Gemini.MaxRetries, genLogger)
	if err != nil {
		log.Warn("skipping generative tier", zap.Error(err))
		return nil
	}

	return recommend.NewGenerativeAttempt(generator, recommend.GenerativeConfig{
		MaxLogLength: config.AI.Gemini.MaxLogLength,
	}, genLogger)
}

func restoreLearner(learner *learning.Learner, path string, log *zap.Logger) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("learning state not restored", zap.Error(err))
		}
		return
	}

	if err := learner.Restore(data); err != nil {
		log.Warn("learning state not restored", zap.Error(err))
		return
	}
	log.Info("learning state restored", zap.String("file", path))
}

func persistLearner(learner *learning.Learner, path string, log *zap.Logger) {
	if path == "" {
		return
	}

	data, err := learner.Snapshot()
	if err != nil {
		log.Warn("learning state not persisted", zap.Error(err))
		return
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Warn("learning state not persisted", zap.Error(err))
		return
	}
	log.Info("learning state persisted", zap.String("file", path))
}
