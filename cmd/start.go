/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa/config"
	"github.com/tieubaoca/docqa/handler"
	"github.com/tieubaoca/docqa/logger"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document Q&A server",
	Long:  `Starts the HTTP server that accepts zip archives and answers questions about their documents`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		log := logger.New(cfg.Log.Level, cfg.Log.Format)
		slog.SetDefault(log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		documentService, cleanup, err := newDocumentService(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := handler.NewRouter(documentService, cfg.MaxUpload, log)

		server := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Server shutdown failed", slog.String("error", err.Error()))
			}
		}()

		log.Info("Starting server",
			slog.String("port", cfg.Port),
			slog.String("provider", cfg.Provider),
			slog.String("model", cfg.Model),
			slog.Any("extensions", cfg.Extract.Extensions))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("port", "p", "", "port to listen on (overrides config)")
}
