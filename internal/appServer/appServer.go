package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkolesni/eventboard/config"
	repository "github.com/dkolesni/eventboard/internal/database/postgres"
	rediscache "github.com/dkolesni/eventboard/internal/database/redis"
	"github.com/dkolesni/eventboard/internal/pkg/processor"
	"github.com/dkolesni/eventboard/internal/service"
	"github.com/dkolesni/eventboard/internal/transport"
	"github.com/dkolesni/eventboard/internal/worker"

	"github.com/dkolesni/eventboard/pkg/objectstore"
	"github.com/dkolesni/eventboard/pkg/postgres"
	"github.com/dkolesni/eventboard/pkg/queue"
	"github.com/dkolesni/eventboard/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository (the persistence gateway)
	eventRepo := repository.NewEventRepository(db)

	// Redis backs the catalog cache and the cleanup queue
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	catalogCache := rediscache.NewCatalogCache(redisClient, cfg.App.CatalogCacheTTL)

	var cleanupQueue *queue.RedisQueue
	cleanupQueue, err = queue.NewRedisQueue(redisClient, &queue.RedisQueueConfig{
		MainQueue:    cfg.Queue.MainQueue,
		DelayedQueue: cfg.Queue.DelayedQueue,
		DLQ:          cfg.Queue.DLQ,
		MaxRetries:   cfg.Queue.MaxRetries,
		BaseDelay:    cfg.Queue.BaseDelay,
		PollInterval: cfg.Worker.PollInterval,
	})
	if err != nil {
		logrus.Errorf("Failed to initialize cleanup queue: %v. Continuing without it...", err)
		cleanupQueue = nil
	}

	// Object storage gateway for event images
	store := objectstore.NewFileStore(cfg.Media.Dir, cfg.Media.PublicBaseURL)
	imageProcessor := processor.NewImageProcessor(cfg.Media.MaxImageWidth)

	// Initialize services
	catalogService := service.NewCatalogService(eventRepo, catalogCache)
	inventoryService := service.NewInventoryService(eventRepo, catalogCache)

	var tasks service.TaskPublisher
	if cleanupQueue != nil {
		tasks = cleanupQueue
	}
	adminService := service.NewAdminService(eventRepo, store, imageProcessor, tasks, catalogCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the orphaned upload cleanup worker
	if cleanupQueue != nil {
		cleanupWorker := worker.NewUploadCleanupWorker(cleanupQueue, store)
		go cleanupWorker.Start(ctx)
	}

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, inventoryService, cfg.App.TrendingLimit)
	adminHandler := transport.NewAdminHandler(adminService, inventoryService)

	// Setup HTTP server
	if cfg.Server.Env == "production" || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(cfg, catalogHandler, adminHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
