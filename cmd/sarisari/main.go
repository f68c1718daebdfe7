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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/jmdelacruz/sarisari-pos/internal/auth"
	"github.com/jmdelacruz/sarisari-pos/internal/backup"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/kvstore"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/sqlstore"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/view"
	"github.com/jmdelacruz/sarisari-pos/internal/config"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/handlers"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
	"github.com/jmdelacruz/sarisari-pos/internal/middleware"
	"github.com/jmdelacruz/sarisari-pos/internal/minigame"
	"github.com/jmdelacruz/sarisari-pos/internal/pos"
	"github.com/jmdelacruz/sarisari-pos/internal/settings"
	httpserver "github.com/jmdelacruz/sarisari-pos/internal/transport/http"
)

func main() {
	root := &cobra.Command{
		Use:          "sarisari",
		Short:        "Sari-sari store inventory and point-of-sale service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), exportCmd(), importCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (catalog.Store, error) {
	switch cfg.Backend {
	case "kv":
		return kvstore.Open(cfg.DataDir)
	default:
		return sqlstore.Open(cfg.DataDir)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel)

			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("open catalog store: %w", err)
			}
			defer store.Close()

			catalogView := view.New(store)
			if err := catalogView.Refresh(context.Background()); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			register, err := pos.NewRegister(cfg.DataDir, cfg.HistoryCap)
			if err != nil {
				return err
			}
			leaderboard, err := minigame.NewLeaderboard(cfg.DataDir, cfg.LeaderboardCap)
			if err != nil {
				return err
			}
			settingsStore, err := settings.Open(cfg.DataDir)
			if err != nil {
				return err
			}

			producer := events.New(cfg.KafkaBrokers)
			defer producer.Close()

			config.MustNonEmpty(cfg.OwnerPassword, "OWNER_PASSWORD")
			config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
			passwordHash, err := auth.HashPassword(cfg.OwnerPassword)
			if err != nil {
				return err
			}
			authService := auth.NewService(passwordHash, []byte(cfg.JWTSecret))

			e := echo.New()
			e.HideBanner = true
			e.Pre(echomw.RemoveTrailingSlash())
			e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

			deps := httpserver.Deps{
				AuthHandler:     &handlers.AuthHandler{Auth: authService},
				CategoryHandler: &handlers.CategoryHandler{View: catalogView, Producer: producer},
				ItemHandler:     &handlers.ItemHandler{View: catalogView, Store: store, Producer: producer},
				DeletedHandler:  &handlers.DeletedHandler{View: catalogView, Store: store, Producer: producer},
				POSHandler:      &handlers.POSHandler{Register: register, Store: store, Producer: producer},
				GameHandler:     &handlers.GameHandler{View: catalogView, Leaderboard: leaderboard, Rounds: cfg.GameRounds},
				SettingsHandler: &handlers.SettingsHandler{Settings: settingsStore},
				BackupHandler:   &handlers.BackupHandler{DataDir: cfg.DataDir},
				Owner:           authService.Middleware(),
			}
			httpserver.Register(e, &deps)

			srv := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
				Handler:      e,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("http server error: %v", err)
				}
			}()
			logger.Info("server started", "port", cfg.ServerPort, "backend", cfg.Backend)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("server shutdown error: %v", err)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the persisted store files to a backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := backup.Export(cfg.DataDir, dest); err != nil {
				return err
			}
			fmt.Printf("exported %s to %s\n", cfg.DataDir, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "to", "", "destination directory")
	cmd.MarkFlagRequired("to")
	return cmd
}

func importCmd() *cobra.Command {
	var src string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the persisted store files from a backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := backup.Import(src, cfg.DataDir); err != nil {
				return err
			}
			fmt.Printf("imported %s into %s\n", src, cfg.DataDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&src, "from", "", "backup directory")
	cmd.MarkFlagRequired("from")
	return cmd
}
