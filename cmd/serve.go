package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/timemachine/internal/config"
	"github.com/ziadkadry99/timemachine/internal/db"
	"github.com/ziadkadry99/timemachine/internal/navigator"
	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/server"
	"github.com/ziadkadry99/timemachine/internal/trips"
	"github.com/ziadkadry99/timemachine/internal/ui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the time machine web server",
	Long:  `Starts the HTTP server with the time machine page, its session websocket and the JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		dbPath := filepath.Join(cfg.DataDir, "timemachine.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv, err := newServer(cfg, database, logger)
		if err != nil {
			return err
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown", "err", err)
			}
		}()

		logger.Info("timemachine starting",
			"version", Version,
			"port", cfg.Port,
			"database", dbPath,
			"trips", cfg.RecordTrips,
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// newServer wires the feature packages onto a server backed by database.
func newServer(cfg *config.Config, database *db.DB, logger *log.Logger) (*server.Server, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	theme, err := prefs.ParseTheme(cfg.DefaultTheme)
	if err != nil {
		return nil, err
	}

	srv := server.New(server.Config{
		Port:     cfg.Port,
		AllowAll: cfg.AllowAllOrigins,
	}, database, logger)

	r := srv.Router()

	var tripStore *trips.Store
	if cfg.RecordTrips {
		tripStore = trips.NewStore(database)
		trips.RegisterRoutes(r, tripStore, ui.VisitorFromRequest)
	}

	page, err := ui.New(ui.Options{
		Catalog:         cat,
		Prefs:           prefs.NewStore(database, theme),
		Trips:           tripStore,
		Defaults:        navigator.Defaults{Site: cfg.DefaultSite, Year: cfg.DefaultYear},
		SettleDelay:     cfg.SettleDelay(),
		LoadTimeout:     cfg.LoadTimeout(),
		MessageInterval: cfg.MessageInterval(),
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	page.RegisterRoutes(r)

	logger.Debug("routes registered", "sites", cat.Len(), "trips", cfg.RecordTrips)
	return srv, nil
}
