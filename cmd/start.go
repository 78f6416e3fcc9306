package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livelist/core/config"
	"livelist/core/database"
	"livelist/core/loader"
	"livelist/core/logger"
	"livelist/core/middleware/auth"
	"livelist/core/middleware/rayid"
	"livelist/core/storage"
	"livelist/feature/catalog"
	"livelist/feature/rows"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the livelist server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if err := cfg.Server.Validate(); err != nil {
			log.Fatalf("Invalid server configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 3. Connect to Database (Optional)
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else if err := rows.Migrate(conn); err != nil {
			logg.Warn("Failed to migrate list rows, table children disabled", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		}

		// 4. Initialize Storage (Optional)
		var store storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Failed to create storage client", zap.Error(err))
		} else {
			bucketCtx, done := context.WithTimeout(ctx, time.Duration(cfg.Storage.TimeoutSeconds)*time.Second)
			created, err := storage.EnsureBucket(bucketCtx, client, cfg.Storage.Bucket, cfg.Storage.Region)
			done()
			switch {
			case err != nil:
				logg.Warn("Object storage unreachable, prefix children disabled", zap.Error(err))
			case created:
				logg.Info("Created bucket", zap.String("bucket", cfg.Storage.Bucket))
				store = client
			default:
				store = client
			}
		}

		// 5. Initialize Features
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		cat := catalog.NewFeature(cfg.Catalog, store, cfg.Storage.Bucket, logger.Named(logg, "catalog"), db)
		mgr.Register(cat)

		svc := cat.Service()
		if err := svc.Bootstrap(ctx); err != nil {
			logg.Fatal("Failed to bootstrap catalog", zap.Error(err))
		}
		defer svc.Close()
		go func() {
			if err := svc.Run(ctx); err != nil {
				logg.Error("Catalog stopped", zap.Error(err))
			}
		}()

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware
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

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logg.Warn("Shutdown did not complete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
