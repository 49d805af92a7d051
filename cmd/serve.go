package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/eduscript/internal/config"
	"github.com/abhisek/eduscript/internal/llm"
	"github.com/abhisek/eduscript/internal/script"
	"github.com/abhisek/eduscript/internal/store"
	"github.com/abhisek/eduscript/internal/tts"
	"github.com/abhisek/eduscript/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func runServer(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := llm.NewProvider(ctx, cfg.LLM, s.EventRepo())
	if err != nil {
		return fmt.Errorf("init model provider: %w", err)
	}
	generator := script.New(provider, script.DefaultConfig())

	var renderer web.NarrationRenderer
	if cfg.TTSEnabled {
		key := cfg.LLM.OpenAI.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		synth, err := tts.NewOpenAISynthesizer(key)
		if err != nil {
			log.Warnw("narration disabled", "reason", err)
		} else {
			renderer = tts.NewRenderer(synth, cfg.AudioDir, log)
		}
	}

	handlers := web.NewHandlers(web.HandlersConfig{
		Store:     s,
		Generator: generator,
		Renderer:  renderer,
		AudioDir:  cfg.AudioDir,
		ModelID:   provider.ModelID(),
		Log:       log,
	})
	router := web.NewRouter(web.RouterConfig{
		Handlers:  handlers,
		Store:     s,
		RateLimit: cfg.RateLimit,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", cfg.Addr(), "model", provider.ModelID())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
