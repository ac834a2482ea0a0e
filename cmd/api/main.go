package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/farmgate/storefront/internal/config"
	"github.com/farmgate/storefront/internal/httpx"
	kafkax "github.com/farmgate/storefront/internal/kafka"
	"github.com/farmgate/storefront/internal/postgres"
	"github.com/farmgate/storefront/internal/redisx"
	"github.com/farmgate/storefront/internal/shop"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	repo := &shop.Repo{DB: db}
	checkout := &shop.Checkout{
		Store:   &shop.CheckoutRepo{DB: db},
		Timeout: cfg.CheckoutTimeout,
	}

	router := httpx.NewRouter()
	sh := &httpx.ShopHandler{
		Checkout: checkout,
		Catalog:  repo,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}
	sh.Register(router)
	ah := &httpx.AdminHandler{Store: repo, Redis: rdb}
	ah.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("HTTP listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	prod.Close()      // stop accepting, flush the inbox
	cancel()          // stop the producer loop
	prod.WaitClosed() // drain
}
