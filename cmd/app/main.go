package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoronov/fitbook/api"
	"github.com/avoronov/fitbook/config"
	"github.com/avoronov/fitbook/internal/cache"
	"github.com/avoronov/fitbook/internal/kafka"
	"github.com/avoronov/fitbook/internal/repository"
	"github.com/avoronov/fitbook/internal/schedule"
	"github.com/avoronov/fitbook/internal/service/booking"
	"github.com/avoronov/fitbook/internal/service/classes"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Schedule.ScheduleCacheTTLSec)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	templateRepo := repository.NewTemplateRepository(pool)
	instanceRepo := repository.NewInstanceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	if cfg.Schedule.TemplatesPath != "" {
		if err := seedTemplates(ctx, cfg.Schedule.TemplatesPath, templateRepo); err != nil {
			log.Fatalf("seed templates: %v", err)
		}
	}

	generator := schedule.NewGenerator(templateRepo, instanceRepo, loc)
	maintainer := schedule.NewMaintainer(instanceRepo, generator, cfg.Schedule.Retention(), cfg.Schedule.TargetWeeksAhead, loc)

	classService := classes.NewClassService(instanceRepo, bookingRepo, redisCache, loc)
	bookingService := booking.NewBookingService(
		instanceRepo,
		bookingRepo,
		redisCache,
		producer,
		cfg.Kafka.ClassEventsTopic,
		cfg.Schedule.CancelWindow(),
	)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	v1 := router.Group("/api/v1")
	api.NewClassHandler(classService).Register(v1.Group("/classes"))
	bookingHandler := api.NewBookingHandler(bookingService, classService)
	bookingHandler.Register(v1.Group("/classes"))
	bookingHandler.RegisterMembers(v1.Group("/members"))
	api.NewAdminHandler(templateRepo, maintainer).Register(v1.Group("/admin"))

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown http server: %v", err)
		}
	}
}

func seedTemplates(ctx context.Context, path string, repo repository.TemplateRepository) error {
	templates, err := config.LoadTemplates(path)
	if err != nil {
		return err
	}
	for i := range templates {
		if err := repo.Upsert(ctx, &templates[i]); err != nil {
			return err
		}
	}
	log.Printf("seeded %d class templates", len(templates))
	return nil
}
