package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-watch-orders/internal/chat"
	"github.com/ariefcatur/go-watch-orders/internal/config"
	"github.com/ariefcatur/go-watch-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-watch-orders/internal/kafka"
	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/postgres"
	"github.com/ariefcatur/go-watch-orders/internal/redisx"
	"github.com/ariefcatur/go-watch-orders/internal/session"
	"github.com/ariefcatur/go-watch-orders/internal/store"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis carries the shipped notices for both durable backends.
	var rdb *redis.Client
	if cfg.StoreBackend != "memory" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
	}

	backend, closeBackend, err := openBackend(ctx, cfg, rdb)
	if err != nil {
		log.Fatalf("store backend: %v", err)
	}
	defer closeBackend()

	seed, err := store.LoadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	st, err := store.Open(ctx, backend, seed)
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	engine := &orders.Engine{Repo: st, Producer: cfg.ServiceName}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start()
		engine.Events = &kafkax.Sink{Producer: prod}
	} else {
		log.Println("KAFKA_BROKERS empty, order events disabled")
	}

	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD empty, admin login disabled")
	}
	h := &httpx.Handler{
		Store:  st,
		Engine: engine,
		Gate:   &session.Gate{Store: st, Admin: session.Credentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword}},
		Chat:   &chat.Service{Log: st},
	}
	if rdb != nil {
		h.Notices = &redisx.Notices{RDB: rdb, TTL: cfg.NotifyTTL}
	}
	router := httpx.NewRouter()
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s (store=%s)", cfg.HTTPAddr, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("server: %v", err)
	}

	if prod != nil {
		prod.Close()      // flush queued events
		prod.WaitClosed()
	}
}

func openBackend(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Backend, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		return &redisx.SnapshotBackend{RDB: rdb, Prefix: cfg.SnapshotPrefix}, func() {}, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		b := &postgres.SnapshotBackend{DB: db}
		if err := b.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return b, db.Close, nil
	case "memory":
		return store.NewMemoryBackend(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
