package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	c "github.com/Iamabhih/storefront-cart/internal/cache"
	"github.com/Iamabhih/storefront-cart/internal/catalog"
	"github.com/Iamabhih/storefront-cart/internal/coupon"
	"github.com/Iamabhih/storefront-cart/internal/events"
	h "github.com/Iamabhih/storefront-cart/internal/http"
	"github.com/Iamabhih/storefront-cart/internal/poller"
	"github.com/Iamabhih/storefront-cart/internal/repository"
	s "github.com/Iamabhih/storefront-cart/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	HTTPPort              string
	MongoURI              string
	MongoDBName           string
	RedisAddr             string
	RedisPassword         string
	CatalogServiceURL     string
	CouponServiceURL      string
	KafkaBrokers          []string
	JWTSecret             string
	FreeShippingThreshold decimal.Decimal
	RequestTimeout        time.Duration
	ShutdownTimeout       time.Duration
}

func loadConfig() *Config {
	threshold, err := decimal.NewFromString(getEnv("FREE_SHIPPING_THRESHOLD", "500"))
	if err != nil {
		log.Fatalf("invalid FREE_SHIPPING_THRESHOLD: %v", err)
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:           getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		CatalogServiceURL:     getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"),
		CouponServiceURL:      getEnv("COUPON_SERVICE_URL", "http://localhost:8082"),
		KafkaBrokers:          brokers,
		JWTSecret:             getEnv("JWT_SECRET", ""),
		FreeShippingThreshold: threshold,
		RequestTimeout:        30 * time.Second,
		ShutdownTimeout:       10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := loadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// MongoDB
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	repo := repository.NewMongoRepository(mongoDB)
	savedRepo := repository.NewMongoSavedRepository(mongoDB)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	cartCache := c.NewRedisCache(redisClient)
	log.Printf("Connected to Redis at %s", cfg.RedisAddr)

	// External collaborators
	catalogClient := catalog.NewHTTPClient(cfg.CatalogServiceURL, cfg.RequestTimeout)
	validator := coupon.NewHTTPValidator(cfg.CouponServiceURL, cfg.RequestTimeout)

	// Events
	var emitter events.Emitter
	if len(cfg.KafkaBrokers) > 0 {
		kafkaEmitter := events.NewKafkaEmitter("cart-events", cfg.KafkaBrokers...)
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
		log.Printf("Publishing cart events to %v", cfg.KafkaBrokers)
	} else {
		emitter = &events.MemoryEmitter{}
		log.Println("KAFKA_BROKERS not set, cart events stay in-process")
	}

	cartService := s.NewCartService(repo, savedRepo, cartCache, catalogClient, validator, emitter, cfg.FreeShippingThreshold)
	cartHandler := h.NewCartHandler(cartService)

	// Checkout drain consumer
	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(repo, cartCache, cfg.KafkaBrokers...)
		defer p.Close()
		go p.Run(pollerCtx)
		log.Println("Checkout drain consumer started")
	}

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware([]byte(cfg.JWTSecret)))
		cartHandler.Routes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "cart-engine"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Cart engine listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down cart engine...")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(ctx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}
	log.Println("cart engine stopped")
}
