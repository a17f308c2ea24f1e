package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/deepchat/backend/internal/config"
	"github.com/zhouzirui/deepchat/backend/internal/handler"
	"github.com/zhouzirui/deepchat/backend/internal/service/ai"
	"github.com/zhouzirui/deepchat/backend/internal/service/chat"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deepchat",
		Short: "DeepChat - chat session gateway for LLM completion APIs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file
			if err := godotenv.Load(); err != nil {
				log.Printf("warning: failed to load .env file: %v", err)
				log.Println("continuing with system environment variables only")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deepchat %s\n", version)
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	completer, err := ai.NewCompleter(cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
	}
	log.Printf("completion provider=%s base_url=%s history=%s", cfg.AI.Provider, cfg.AI.BaseURL, cfg.Chat.HistoryMode)

	store := chat.NewStore()
	exchanger := chat.NewExchanger(store, completer, chat.ExchangeConfig{
		HistoryMode:    cfg.Chat.HistoryMode,
		StoreReasoning: cfg.Chat.StoreReasoning,
		DefaultModel:   cfg.AI.DefaultModel,
		Timeout:        cfg.AI.Timeout,
	})

	sweeper := chat.NewSweeper(store, chat.SweeperConfig{
		Interval: cfg.Chat.SweepInterval,
		MaxAge:   cfg.Chat.MaxAge,
	})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	router := handler.NewRouter(store, exchanger, cfg.Server.AllowedOrigin)
	return startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("DeepChat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
