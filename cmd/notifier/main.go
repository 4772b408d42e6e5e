package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-watch-orders/internal/config"
	kafkax "github.com/ariefcatur/go-watch-orders/internal/kafka"
	"github.com/ariefcatur/go-watch-orders/internal/notify"
	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/ariefcatur/go-watch-orders/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		Notices:     &redisx.Notices{RDB: rdb, TTL: cfg.NotifyTTL},
		ServiceName: cfg.ServiceName + "-notifier",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, orders.TopicOrderShipped, cfg.NotifierWorkers)
	log.Printf("notifier consumer started: group=%s topic=%s workers=%d", cfg.NotifierGroup, orders.TopicOrderShipped, cfg.NotifierWorkers)
	if err := cons.Start(ctx, svc.HandleOrderShipped); err != nil {
		log.Printf("consumer exit: %v", err)
	}
	log.Println("notifier stopped")
}
