package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	nats "github.com/nats-io/nats.go"

	"ProductsAdmin/internal/config"
	"ProductsAdmin/internal/form"
	"ProductsAdmin/internal/repository"
	"ProductsAdmin/internal/resolver"
	"ProductsAdmin/internal/service"
	externalHttp "ProductsAdmin/internal/transport/http"
	"ProductsAdmin/pkg/cache"
	"ProductsAdmin/pkg/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// подключаем Redis
	cacheClient := cache.NewRedisClient(&redis.Options{Addr: cfg.RedisAddr}, "products")
	// подключаем NATS
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	publisher := events.NewPublisher(nc, cfg.NATSSubject)

	// клиент удалённого API, сервис с кэшем и событиями, резолвер и формы
	client := repository.NewProductsClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, cfg.APIToken)
	srv := service.NewProductsService(client, cacheClient, publisher, cfg.RedisTTL)
	res := resolver.NewProductsResolver(srv, cfg.NotFoundPath)
	forms := form.NewProductsFormService()

	r := mux.NewRouter()
	r.Use(externalHttp.LoggingMiddleware(nil))
	h := externalHttp.NewHandler(srv, forms, res, cfg.NotFoundPath)
	h.RegisterRoutes(r)

	srvHttp := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Printf("starting server at %s, api %s", cfg.HTTPAddr, cfg.APIBaseURL)
		if err := srvHttp.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// ожидаем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srvHttp.Shutdown(ctx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	if err := cacheClient.Close(); err != nil {
		log.Printf("failed to close Redis client: %v", err)
	}
	// дренируем NATS, чтобы отправить последние события
	if err := nc.Drain(); err != nil {
		log.Printf("failed to drain NATS connection: %v", err)
	}
	log.Printf("server exited properly")
}
