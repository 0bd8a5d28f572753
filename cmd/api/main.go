package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/pos-backoffice/internal/application/inventory"
	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/catalog"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/memory"
	infrakafka "github.com/jhoicas/pos-backoffice/internal/infrastructure/kafka"
	infrapdf "github.com/jhoicas/pos-backoffice/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pos-backoffice/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/pos-backoffice/internal/interfaces/http"
	"github.com/jhoicas/pos-backoffice/pkg/config"
	"github.com/jhoicas/pos-backoffice/pkg/logger"
	"github.com/jhoicas/pos-backoffice/pkg/metrics"
)

// persistence repositorios y TxRunner del driver elegido.
type persistence struct {
	txRunner  transfer.TxRunner
	ledgers   repository.LedgerRepository
	invoices  repository.TransferInvoiceRepository
	records   repository.InventoryRecordStore
	movements repository.InventoryMovementRepository
	locations repository.LocationRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store := openStore(ctx, cfg, log)
	defer store.close()

	// Redis: consecutivo compartido y lock del barrido. Sin Redis se usan las variantes locales.
	var (
		seq    transfer.InvoiceSequence
		locker transfer.Locker
	)
	if cfg.Redis.Enabled() {
		client, err := infraredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		seq = infraredis.NewInvoiceSequence(client)
		locker = infraredis.NewLocker(client, 0)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: consecutivo y lock locales (una sola réplica)")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	transferMetrics := metrics.NewTransferMetrics(registry)

	ledger := transfer.NewLedgerManager(store.ledgers, store.invoices)
	if _, err := ledger.EnsureExists(ctx); err != nil {
		log.Fatal().Err(err).Msg("libro de traslados")
	}
	transferUC := transfer.NewTransferUseCase(
		store.txRunner,
		ledger,
		transfer.NewInvoiceBuilder(store.locations, transfer.NewNumberGenerator(seq)),
		transfer.NewMovementCoordinator(transferMetrics),
		store.invoices,
		store.locations,
		infrapdf.NewTransferSlipGenerator(),
		log,
		transferMetrics,
	)
	if cfg.Kafka.Enabled() {
		publisher := infrakafka.NewPublisher(infrakafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer publisher.Close()
		transferUC.SetEventPublisher(publisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos de traslado en Kafka")
	}
	stockUC := inventory.NewStockUseCase(store.txRunner, store.records, store.movements, store.locations, log)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	sweeper := transfer.NewOrphanSweeper(transferUC, locker, cfg.Transfer.SweepInterval(), log)
	go sweeper.Run(sweepCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Backoffice: traslados de inventario",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		TransferUC:  transferUC,
		StockUC:     stockUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		ServiceName: cfg.App.Name,
		Gatherer:    registry,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) persistence {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		if cfg.Transfer.LocationsFile != "" {
			locs, err := catalog.Load(cfg.Transfer.LocationsFile)
			if err != nil {
				log.Fatal().Err(err).Str("file", cfg.Transfer.LocationsFile).Msg("catálogo de ubicaciones")
			}
			for _, l := range locs {
				store.SeedLocation(l)
			}
			log.Info().Int("locations", len(locs)).Msg("ubicaciones cargadas en memoria")
		} else {
			log.Warn().Msg("STORE_DRIVER=memory sin LOCATIONS_FILE: no hay ubicaciones registradas")
		}
		repos := store.Repositories()
		return persistence{
			txRunner:  store,
			ledgers:   repos.Ledgers,
			invoices:  repos.Invoices,
			records:   repos.Records,
			movements: repos.Movements,
			locations: repos.Locations,
			close:     func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return persistence{
		txRunner:  postgres.NewTxRunner(pool),
		ledgers:   postgres.NewLedgerRepository(pool),
		invoices:  postgres.NewTransferInvoiceRepository(pool),
		records:   postgres.NewInventoryRecordRepository(pool),
		movements: postgres.NewInventoryMovementRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		close:     pool.Close,
	}
}
