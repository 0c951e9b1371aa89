package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"harvestbot/api"
	"harvestbot/config"
	"harvestbot/oaipmh"
	"harvestbot/orchestrator"
	"harvestbot/shared/kafka"
	"harvestbot/storage"
	"harvestbot/types"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.S3Bucket == "" {
		log.Fatal("S3_BUCKET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, storage.Config{
		Bucket:       cfg.S3Bucket,
		Prefix:       cfg.S3Prefix,
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Fatalf("Failed to init S3 store: %v", err)
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.DeliveryTopic,
	})
	if err != nil {
		log.Fatalf("Failed to init Kafka producer: %v", err)
	}
	defer producer.Close()

	client := oaipmh.NewClient(oaipmh.ClientConfig{
		HTTPClient: &http.Client{Timeout: config.DefaultHTTPTimeout},
		PageDelay:  cfg.PageDelay,
		PageCap:    cfg.PageCap,
	})

	orch := orchestrator.New(orchestrator.Config{
		Client:        client,
		Store:         store,
		Sender:        producer,
		BatchCapacity: cfg.BatchCapacity,
	})

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.WorkItemTopic,
		GroupID: cfg.ConsumerGroup,
		Handler: &kafka.TypedMessageHandler[types.WorkItem]{
			// Items missing either field are skipped without retry.
			Validate:   func(item *types.WorkItem) bool { return item.URL != "" && item.JournalKey != "" },
			Process:    orch.HandleWorkItem,
			AlwaysMark: true,
		},
	})
	if err != nil {
		log.Fatalf("Failed to init Kafka consumer: %v", err)
	}
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start Kafka consumer: %v", err)
	}

	r := api.NewRouter(orch, store)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	go func() {
		log.Printf("Starting API server on %s", cfg.ListenAddr)
		log.Println("API endpoints available:")
		log.Println("  GET  /api/health")
		log.Println("  POST /api/harvest")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	_ = srv.Shutdown(context.Background())
}
