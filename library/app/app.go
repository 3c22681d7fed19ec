package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/config"
	"github.com/astorskii/library-api/library/internal/handler"
	"github.com/astorskii/library-api/library/internal/repository"
	"github.com/astorskii/library-api/library/internal/schedule"
	"github.com/astorskii/library-api/library/internal/server"
	"github.com/astorskii/library-api/library/internal/service"
	"github.com/astorskii/library-api/library/migrations"
	"github.com/astorskii/library-api/pkg/email"
	"github.com/astorskii/library-api/pkg/kafka"
	"github.com/astorskii/library-api/pkg/logger"
	"github.com/astorskii/library-api/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}
	svc := service.NewService(repo, repo, kafka.NewEnqueuer(producer), log)

	scanner := schedule.NewScanner(cfg.Overdue, svc, email.NewClient(cfg.Email), log)
	if err := scanner.Start(); err != nil {
		log.Fatal("overdue scanner start", zap.Error(err))
	}

	h := handler.New(svc, svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	scanner.Stop()
	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err = producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
