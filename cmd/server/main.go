package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deadpool750/list7/internal/cart"
	"github.com/deadpool750/list7/internal/catalog"
	"github.com/deadpool750/list7/internal/checkout"
	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/httpapi"
	"github.com/deadpool750/list7/internal/identity"
	"github.com/deadpool750/list7/internal/notify"
	"github.com/deadpool750/list7/internal/profile"
	"github.com/deadpool750/list7/internal/publisher"
	"github.com/deadpool750/list7/internal/wallet"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	KafkaBrokers    []string
	DBCredentials   *checkout.Credentials
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	return &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "trekking"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:  []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		DBCredentials: &checkout.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "trekking"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/checkout/migrations"),
		},
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("shop server starting...")

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}
	store := docstore.WithBreaker(docstore.NewMongoStore(db))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	ledger, err := checkout.NewPostgresLedger(cfg.DBCredentials)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer ledger.Close()

	if err := ledger.RunMigrations(cfg.DBCredentials); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	notifier := notify.NewKafkaNotifier(cfg.KafkaBrokers...)
	defer notifier.Close()

	carts := cart.NewRegistry()
	identityService := identity.NewService(store, identity.NewRedisSessions(redisClient))
	catalogService := catalog.NewService(store, carts, catalog.NewRedisItemsCache(redisClient), notifier)
	checkoutWorkflow := checkout.NewWorkflow(store, carts, ledger)
	profileService := profile.NewService(store, identityService)
	walletService := wallet.NewService(store, notifier)

	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	poller := publisher.NewOutboxPoller(ledger, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	server := httpapi.NewServer(
		identityService,
		catalogService,
		carts,
		checkoutWorkflow,
		profileService,
		walletService,
		cfg.RequestTimeout,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Shop server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down shop server...")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shut down cleanly: %v", err)
	}

	log.Println("Shop server stopped")
}
