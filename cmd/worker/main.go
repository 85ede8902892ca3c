package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoronov/fitbook/config"
	"github.com/avoronov/fitbook/internal/kafka"
	"github.com/avoronov/fitbook/internal/notify"
	"github.com/avoronov/fitbook/internal/repository"
	"github.com/avoronov/fitbook/internal/schedule"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	templateRepo := repository.NewTemplateRepository(pool)
	instanceRepo := repository.NewInstanceRepository(pool)

	generator := schedule.NewGenerator(templateRepo, instanceRepo, loc)
	maintainer := schedule.NewMaintainer(instanceRepo, generator, cfg.Schedule.Retention(), cfg.Schedule.TargetWeeksAhead, loc)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ClassEventsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ClassEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return notifier.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	runMaintenance(ctx, maintainer)

	ticker := time.NewTicker(time.Duration(cfg.Worker.MaintenanceIntervalMinutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runMaintenance(ctx, maintainer)
		case <-ctx.Done():
			log.Printf("shutting down")
			return
		}
	}
}

func runMaintenance(ctx context.Context, maintainer *schedule.Maintainer) {
	summary, err := maintainer.Run(ctx)
	if err != nil {
		log.Printf("maintenance run error: %v", err)
		return
	}
	log.Printf("maintenance: pruned %d, created %d, skipped %d, failed %d",
		summary.Pruned, summary.Created, summary.Skipped, summary.Failed)
}
