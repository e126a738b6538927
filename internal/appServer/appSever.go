package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/config"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/clock"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database/memory"
	repository "github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database/postgres"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/journal"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/service"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport/middleware"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/worker"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/auth"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/notify"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/payment"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/postgres"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/queue"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/redis"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/scheduler"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the shared height, the shared payment rail and the event queues
	var redisClient *goredis.Client
	if cfg.Chain.HeightSource == "redis" || cfg.Payment.Rail == "redis" ||
		cfg.Notify.Redis.Enabled || cfg.Notify.Redis.DeadLetter != "" {
		redisClient, err = redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.Fatalf("Failed to initialize redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Payment rail
	var rail payment.Rail
	switch cfg.Payment.Rail {
	case "redis":
		rail = payment.NewRedisRail(redisClient, cfg.Payment.KeyPrefix)
		logrus.Info("Redis payment rail initialized, genesis balances are not applied")
	default:
		rail = payment.NewMemoryRail(cfg.Payment.Genesis)
		logrus.Infof("Memory payment rail initialized with %d genesis accounts", len(cfg.Payment.Genesis))
	}

	// Initialize storage
	store, snapshots, restoredHeight := openStore(ctx, cfg, rail)
	defer store.Close()

	platform, err := store.InitPlatform(ctx, &entity.PlatformConfig{
		Owner:              cfg.Platform.Owner,
		PlatformFeePercent: cfg.Platform.FeePercent,
		MinTicketPrice:     cfg.Platform.MinTicketPrice,
		MaxRefundWindow:    cfg.Platform.MaxRefundWindow,
		PurchaseAfterEvent: cfg.Platform.PurchaseAfterEvent,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize platform: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"owner":                platform.Owner,
		"platform_fee_percent": platform.PlatformFeePercent,
		"min_ticket_price":     platform.MinTicketPrice,
		"max_refund_window":    platform.MaxRefundWindow,
	}).Info("Platform configuration loaded")

	// Height source
	var clk clock.Producer
	switch cfg.Chain.HeightSource {
	case "redis":
		clk = clock.NewRedis(redisClient, cfg.Chain.HeightKey)
	default:
		clk = clock.NewManual(max(cfg.Chain.StartHeight, restoredHeight))
	}

	// Notifications
	dispatcher := newDispatcher(cfg, redisClient)
	dispatcher.Start(context.Background())
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logrus.Errorf("Failed to close publishers: %v", err)
		}
		if dropped := dispatcher.Dropped(); dropped > 0 {
			logrus.Warnf("%d ledger events dropped on a full buffer", dropped)
		}
	}()

	opts := []service.Option{
		service.WithPublisher(dispatcher),
		service.WithCustody(entity.CustodyMode(cfg.Payment.Custody)),
	}

	// Operation journal
	var reader transport.JournalReader
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logrus.Fatalf("Failed to open journal: %v", err)
		}
		defer j.Close()
		opts = append(opts, service.WithRecorder(j))
		reader = j
		logrus.WithField("path", cfg.Journal.Path).Info("Operation journal opened")
	}

	// Initialize services
	ledger := service.NewLedgerService(store, clk, rail, opts...)

	var wg sync.WaitGroup
	if cfg.Chain.ProduceBlocks {
		blocks := scheduler.NewScheduler(clk, cfg.Chain.BlockInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			blocks.Start(ctx)
		}()
		logrus.WithField("interval", cfg.Chain.BlockInterval).Info("Block producer started")
	}

	if snapshots != nil {
		snapshots = ledgerSnapshotter{ledger: ledger, store: snapshots}
		snapshotWorker := worker.NewSnapshotWorker(snapshots, clk, cfg.Snapshot.Path, cfg.Snapshot.Interval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshotWorker.Start(ctx)
		}()
	}

	// Initialize handlers
	eventHandler := transport.NewEventHandler(ledger)
	ticketHandler := transport.NewTicketHandler(ledger)
	platformHandler := transport.NewPlatformHandler(ledger)
	batchHandler := transport.NewBatchHandler(ledger, reader)

	routeOpts := transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}
	if cfg.JWT.Enabled {
		routeOpts.Verifier = auth.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	} else {
		logrus.Warnf("JWT disabled, callers are identified by the %s header", middleware.CallerHeader)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(eventHandler, ticketHandler, platformHandler, batchHandler, routeOpts)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("addr", cfg.ServerAddress()).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	// Workers write the final snapshot on cancellation
	cancel()
	wg.Wait()
}

// openStore returns the configured store. For the memory driver it also
// returns the store as a snapshot target, after restoring the last snapshot,
// and the height that snapshot was taken at. An in-process rail is saved and
// restored with the store.
func openStore(ctx context.Context, cfg *config.Config, rail payment.Rail) (database.Store, worker.Snapshotter, uint64) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewPostgresDB(&cfg.Database)
		if err != nil {
			logrus.Fatalf("Failed to initialize database: %v", err)
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		return repository.NewStore(db), nil, 0

	default:
		store := memory.New()
		if book, ok := rail.(memory.BalanceBook); ok {
			store.TrackBalances(book)
		}
		if !cfg.Snapshot.Enabled {
			logrus.Warn("Snapshots disabled, ledger state is lost on exit")
			return store, nil, 0
		}

		height, err := store.LoadSnapshot(cfg.Snapshot.Path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logrus.WithField("path", cfg.Snapshot.Path).Info("No snapshot found, starting empty")
		case err != nil:
			logrus.Fatalf("Failed to load snapshot: %v", err)
		default:
			logrus.WithFields(logrus.Fields{
				"path":   cfg.Snapshot.Path,
				"height": height,
			}).Info("Ledger restored from snapshot")
		}
		return store, store, height
	}
}

// ledgerSnapshotter takes snapshots between ledger operations, so rail
// balances and ledger state are captured at the same point.
type ledgerSnapshotter struct {
	ledger service.Ledger
	store  worker.Snapshotter
}

func (s ledgerSnapshotter) SaveSnapshot(path string, height uint64) error {
	return s.ledger.Quiesce(func() error {
		return s.store.SaveSnapshot(path, height)
	})
}

// newDispatcher fans ledger events out to the log and every enabled broker,
// with per-sink retries, behind a bounded buffer.
func newDispatcher(cfg *config.Config, redisClient *goredis.Client) *notify.Dispatcher {
	publishers := []notify.Publisher{notify.NewLogPublisher()}

	if cfg.Notify.Redis.Enabled {
		publishers = append(publishers, queue.NewRedisQueue(redisClient, cfg.Notify.Redis.Queue))
		logrus.WithField("queue", cfg.Notify.Redis.Queue).Info("Redis event queue initialized")
	}

	if cfg.Notify.Telegram.Enabled {
		publishers = append(publishers, telegram.NewBot(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
		logrus.Info("Telegram bot initialized")
	}

	if cfg.Notify.Kafka.Enabled {
		publishers = append(publishers, notify.NewKafkaPublisher(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic))
		logrus.WithField("topic", cfg.Notify.Kafka.Topic).Info("Kafka publisher initialized")
	}

	if cfg.Notify.RabbitMQ.Enabled {
		rabbit, err := notify.NewRabbitPublisher(cfg.Notify.RabbitMQ.URL, cfg.Notify.RabbitMQ.Exchange)
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ publisher: %v. Continuing without it...", err)
		} else {
			publishers = append(publishers, rabbit)
			logrus.WithField("exchange", cfg.Notify.RabbitMQ.Exchange).Info("RabbitMQ publisher initialized")
		}
	}

	policy := notify.NewRetryPolicy(cfg.Notify.MaxRetries, cfg.Notify.BaseDelay)
	dispatcher := notify.NewDispatcher(notify.RetryEach(policy, publishers...), cfg.Notify.BufferSize)

	if cfg.Notify.Redis.DeadLetter != "" {
		dispatcher.SetDeadLetter(queue.NewDeadLetterQueue(redisClient, cfg.Notify.Redis.DeadLetter))
		logrus.WithField("key", cfg.Notify.Redis.DeadLetter).Info("Dead letter queue initialized")
	}
	return dispatcher
}
