package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"deck-sync/core/config"
	"deck-sync/core/loader"
	"deck-sync/core/logger"
	"deck-sync/core/middleware/auth"
	"deck-sync/core/middleware/rayid"
	"deck-sync/feature/decks"
	"deck-sync/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "deck-sync/docs/swagger"
)

// @title Deck Sync API
// @version 1.0
// @description API for syncing exported note pages into flashcard collections.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server, the sync scheduler and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		coordinator := a.coordinator(decks.LogNotifier{Logger: logg})

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(decks.NewFeature(coordinator, a.store, logg))
		mgr.Register(integrity.NewFeature(a.integrity()))

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(context.Background())
		scheduler := decks.NewScheduler(coordinator, decks.SystemClock{}, a.cfg.Sync.Interval(), a.cfg.Sync.SyncOnStart, logg).
			WatchInterval(config.IntervalSource(configDir))
		go scheduler.Run(ctx)

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()

		// Let a running round finish its tasks
		a.runner.Wait()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
