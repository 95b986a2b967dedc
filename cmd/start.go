package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"point-record/core/loader"
	"point-record/core/logger"
	"point-record/core/metrics"
	"point-record/core/middleware/auth"
	"point-record/core/middleware/rayid"
	"point-record/core/storage"
	"point-record/feature/export"
	"point-record/feature/series"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the point record server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Configuration, logger and record
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		// 2. Connect eagerly so that startup reports the store state
		if rt.record.EnsureConnected(context.Background()) {
			logg.Info("Connected to backing store", zap.String("backend", rt.cfg.Backend.Driver))
		} else {
			logg.Warn("Backing store unreachable at startup, serving from buffer",
				zap.String("backend", rt.cfg.Backend.Driver),
				zap.Error(rt.record.LastError()),
			)
		}

		// 3. Storage (Optional, exports only)
		var store storage.Client
		if client, err := storage.NewClient(rt.cfg.Storage); err != nil {
			logg.Warn("Storage client unavailable, exports disabled", zap.Error(err))
		} else {
			store = client
		}

		// 4. Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           rt.cfg.Server.ReadTimeout(),
		})

		// 5. Features
		mgr := loader.NewManager(logg)
		mgr.Register(series.NewFeature(rt.record, logg.Named("series")))
		mgr.Register(export.NewFeature(rt.record, store, rt.cfg.Storage, logg.Named("export")))

		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(logger.Middleware(logg))

		// Metrics are public so that scrapers need no key
		if rt.cfg.Server.MetricsEnabled {
			app.Get("/metrics", metrics.Handler(rt.registry))
		}

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Skip: []string{"/metrics"}}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
