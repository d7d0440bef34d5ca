// Command server runs the attendance compliance service: HTTP API, the
// reconciliation sweeper and the audit outbox publisher in one process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"custodia/internal/attendance"
	attendanceMetrics "custodia/internal/attendance/metrics"
	"custodia/internal/audit"
	auditWorker "custodia/internal/audit/worker"
	"custodia/internal/compliance"
	complianceMetrics "custodia/internal/compliance/metrics"
	"custodia/internal/jwttoken"
	"custodia/internal/ledger"
	"custodia/internal/person"
	"custodia/internal/platform/config"
	"custodia/internal/platform/httpserver"
	"custodia/internal/platform/logger"
	"custodia/internal/platform/metrics"
	"custodia/internal/platform/postgres"
	platformredis "custodia/internal/platform/redis"
	"custodia/internal/regime"
	"custodia/internal/stats"
	httptransport "custodia/internal/transport/http"
	"custodia/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("postgres connected", "max_open_conns", cfg.Postgres.MaxOpenConns)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	kafkaClient, err := audit.NewKafkaClient(cfg.Kafka.Brokers)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		if err := audit.EnsureTopic(ctx, kafkaClient, cfg.Kafka.AuditTopic); err != nil {
			return err
		}
		log.Info("kafka connected", "topic", cfg.Kafka.AuditTopic)
	}

	appMetrics := metrics.New()

	// Store selection: postgres when configured, memory otherwise. The
	// memory path keeps local runs and demos container-free.
	var (
		persons    person.Store
		regimes    regime.Store
		events     ledger.Store
		auditStore audit.Store
		candidates compliance.Store
		statsStore stats.Store
		runner     tx.Runner
	)
	if db != nil {
		persons = person.NewPostgresStore(db)
		regimes = regime.NewPostgresStore(db)
		events = ledger.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		candidates = compliance.NewPostgresStore(db)
		statsStore = stats.NewPostgresStore(db)
		runner = tx.NewSQLRunner(db)
	} else {
		memPersons := person.NewMemoryStore()
		memRegimes := regime.NewMemoryStore()
		memEvents := ledger.NewMemoryStore()
		persons = memPersons
		regimes = memRegimes
		events = memEvents
		auditStore = audit.NewMemoryStore()
		candidates = compliance.NewMemoryStore(memPersons, memRegimes)
		statsStore = stats.NewMemoryStore(memPersons, memRegimes, memEvents)
		runner = tx.NewShardedRunner()
	}

	publisher := audit.NewPublisher(auditStore)
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)

	personService := person.NewService(persons, regimes, runner, publisher, appMetrics)
	recorder := attendance.NewService(persons, regimes, events, runner, publisher, attendanceMetrics.New())
	manager := compliance.NewManager(persons, regimes, candidates, runner, publisher,
		complianceMetrics.New(), log, cfg.Sweep.Parallelism)
	statsService := stats.NewService(statsStore, stats.NewCache(redisClient, cfg.Redis.SummaryTTL))

	probes := []httptransport.Probe{}
	if db != nil {
		probes = append(probes, httptransport.Probe{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		probes = append(probes, httptransport.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	handler := httptransport.NewHandler(
		log, appMetrics, tokens, personService, recorder, manager, statsService, probes...)
	server := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	// Workers get their own cancel so a server failure can wind them down
	// even though the signal context is still live.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		compliance.NewSweeper(manager, cfg.Sweep.Interval, log).Run(workerCtx)
	}()

	if db != nil && kafkaClient != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker := auditWorker.New(db, kafkaClient, cfg.Kafka.AuditTopic, cfg.Kafka.PollInterval, log)
			if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		cancelWorkers()
		stopWorkers(&wg)
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	wg.Wait()
	log.Info("shutdown complete")
	return nil
}

func stopWorkers(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
	}
}
