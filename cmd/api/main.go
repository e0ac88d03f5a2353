package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/georgemunganga/eshop-backend/internal/config"
	"github.com/georgemunganga/eshop-backend/internal/modules/auth"
	"github.com/georgemunganga/eshop-backend/internal/modules/catalog"
	"github.com/georgemunganga/eshop-backend/internal/modules/order"
	"github.com/georgemunganga/eshop-backend/internal/modules/user"
	"github.com/georgemunganga/eshop-backend/internal/platform/database"
	"github.com/georgemunganga/eshop-backend/internal/platform/events"
	"github.com/georgemunganga/eshop-backend/internal/platform/metrics"
)

type repositories struct {
	catalog catalog.Repository
	users   user.Repository
	orders  order.Repository
	close   func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &repositories{
			catalog: catalog.NewPostgresRepository(db),
			users:   user.NewPostgresRepository(db),
			orders:  order.NewPostgresRepository(db),
			close:   func(context.Context) error { return db.Close() },
		}, nil
	default:
		m, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &repositories{
			catalog: catalog.NewMongoRepository(m.DB),
			users:   user.NewMongoRepository(m.DB),
			orders:  order.NewMongoRepository(m.DB),
			close:   m.Close,
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repos, err := openStore(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store (%s): %v", cfg.StoreDriver, err)
	}
	log.Printf("connected to %s store", cfg.StoreDriver)

	var publisher events.Publisher = events.Noop{}
	if cfg.KafkaEnabled() {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		log.Printf("publishing order events to %s", cfg.KafkaOrderTopic)
	}

	images, err := catalog.NewDiskImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "api")

	// ── Services ────────────────────────────────────────────
	catalogService := catalog.NewService(repos.catalog, images)
	userService := user.NewService(repos.users)
	authService := auth.NewService(repos.users, cfg.AuthSecret)
	orderService := order.NewService(repos.orders, repos.catalog, repos.users,
		order.WithPublisher(publisher),
		order.WithMaxLineQuantity(cfg.OrderMaxLineQuantity),
		order.WithCompensation(cfg.OrderCompensateOnFailure),
		order.WithConcurrency(cfg.OrderLineConcurrency),
	)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(serverMetrics.Middleware)
	router.Use(auth.Gate(authService, cfg.APIURL))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler(reg))
	catalog.ServeUploads(router, cfg.UploadDir)

	router.Route(cfg.APIURL, func(r chi.Router) {
		catalog.NewHandler(catalogService).RegisterRoutes(r)
		user.NewHandler(userService).RegisterRoutes(r)
		auth.NewHandler(authService).RegisterRoutes(r)
		order.NewHandler(orderService).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("received %v; shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
		if err := publisher.Close(); err != nil {
			log.Printf("event publisher close: %v", err)
		}
		if err := repos.close(ctx); err != nil {
			log.Printf("store close: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("eshop API listening on :%s (api root %s)", cfg.Port, cfg.APIURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server: %v", err)
	}
	<-idleConnsClosed
}
