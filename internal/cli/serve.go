package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdmorrow/docqa/internal/api"
	"github.com/jdmorrow/docqa/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.APIKey == "" {
			log.Warn("DOCQA_API_KEY is not set, API authentication is disabled")
		}

		if err := d.store.CreateCollection(ctx, cfg.Collection); err != nil {
			log.Warn("collection setup failed, continuing", "error", err)
		}

		orch := pipeline.NewOrchestrator(cfg, d.chunker, d.indexer, log)
		orch.Start(ctx)

		srv := api.NewServer(orch, d.processor, d.provider, d.store, d.stats, log, cfg)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info("shutting down...")

			orch.Stop()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docqa", "port", cfg.Port, "provider", d.provider.Name(), "collection", cfg.Collection)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
