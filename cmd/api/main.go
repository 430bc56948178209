package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/api/livefeed"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/report"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

const liveFeedGroup = "api-live-feed"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	if err := cfg.ValidateSecret(); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] EC Storefront")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)
	log.Printf("[API] Uploads: %s", cfg.UploadDir)

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("[API] Failed to prepare schema: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	var publisher event.Publisher = event.NopPublisher{}
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	} else {
		log.Println("[API] No Kafka brokers configured, events are dropped")
	}

	productStore := store.NewPostgresProductStore(db)
	orderStore := store.NewPostgresOrderStore(db)
	userStore := store.NewPostgresUserStore(db)

	orderSvc := order.NewService(orderStore, productStore, publisher,
		order.WithAnonymousCheckout(cfg.AllowAnonymousCheckout))
	productSvc := product.NewService(productStore, orderSvc, publisher,
		product.WithSoftDelete(cfg.ProductSoftDelete))
	userSvc := user.NewService(userStore, publisher,
		user.WithTokenTTLs(cfg.VerificationTTL, cfg.ResetTTL))
	reportSvc := report.NewService(orderStore, orderStore, userStore)

	if cfg.AdminEmail != "" {
		created, err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("[API] Failed to ensure admin account: %v", err)
		}
		if created {
			log.Printf("[API] Created admin account %s", cfg.AdminEmail)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)

	images, err := api.NewImageStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("[API] Failed to prepare upload directory: %v", err)
	}

	var wg sync.WaitGroup
	var liveFeed http.Handler
	if cfg.KafkaEnabled() {
		hub := livefeed.NewHub()
		liveFeed = hub

		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, liveFeedGroup)
		defer consumer.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("[API] Starting live order feed consumer...")
			if err := consumer.Consume(ctx, hub.HandleEvent); err != nil && ctx.Err() == nil {
				log.Printf("[API] Live feed consumer error: %v", err)
			}
		}()
	}

	router := api.NewRouter(api.RouterConfig{
		Handlers:       api.NewHandlers(productSvc, orderSvc),
		AuthHandlers:   api.NewAuthHandlers(userSvc, jwtService),
		AdminHandlers:  api.NewAdminHandlers(productSvc, userSvc, images),
		ReportHandlers: api.NewReportHandlers(reportSvc),
		JWT:            jwtService,
		LiveFeed:       liveFeed,
		StaticDir:      cfg.StaticDir,
		UploadDir:      cfg.UploadDir,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}

	wg.Wait()
}
