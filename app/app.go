package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/circulation-service/config"
	"github.com/Astemirdum/circulation-service/internal/handler"
	"github.com/Astemirdum/circulation-service/internal/repository"
	"github.com/Astemirdum/circulation-service/internal/server"
	"github.com/Astemirdum/circulation-service/internal/service"
	"github.com/Astemirdum/circulation-service/migrations"
	"github.com/Astemirdum/circulation-service/pkg/database"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
	"github.com/Astemirdum/circulation-service/pkg/logger"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "circulation")
	db, err := database.New(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	catalogRepo := repository.NewCatalogRepository(db, log)
	borrowerRepo := repository.NewBorrowerRepository(db, log)
	ledgerRepo := repository.NewLedgerRepository(db, log)

	queue := service.NewNopEnqueuer()
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		defer producer.Close() //nolint:errcheck
		queue = service.NewEnqueuer(producer)
	}

	svc := service.NewService(catalogRepo, borrowerRepo, ledgerRepo, queue, log)
	h := handler.New(svc, svc, svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(srv.Run)
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case termSig := <-sig:
			log.Debug("Graceful shutdown", zap.Any("signal", termSig))
		case <-ctx.Done():
		}

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server run", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
