package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	appanalytics "github.com/jhoicas/pedidos-api/internal/application/analytics"
	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/application/transfer"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/contact"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pedidos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/pedidos-api/pkg/config"
	"github.com/jhoicas/pedidos-api/pkg/logger"
	"github.com/jhoicas/pedidos-api/pkg/money"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// storage repositorios del backend elegido (PostgreSQL o memoria).
type storage struct {
	tx             ports.TxRunner
	users          repository.UserRepository
	products       repository.ProductRepository
	counterparties repository.CounterpartyRepository
	orders         repository.OrderRepository
	analytics      repository.AnalyticsRepository
	close          func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de datos")
	}
	defer store.close()

	formatter, err := money.NewFormatter(cfg.Currency.Code, cfg.Currency.Locale)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de moneda")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	verifier := contact.NewVerifier(contact.Config{
		VerifyDNS:     cfg.Contact.VerifyDNS,
		DefaultRegion: cfg.Contact.DefaultRegion,
	}, nil, log.Component("contact"))

	orderUC := orders.NewUseCase(
		store.tx, store.orders, store.products, store.counterparties,
		verifier, orders.NewMetrics(reg), log.Zerolog(),
		orders.Config{AllowNegativeStock: cfg.Stock.AllowNegative},
	)
	printUC := orders.NewPrintUseCase(orderUC, infrapdf.NewMarotoPDFGenerator(), formatter, cfg.App.Name)
	transferUC := transfer.NewUseCase(store.tx, store.products, store.counterparties, log.Zerolog())
	dashboardUC := appanalytics.NewDashboardUseCase(store.analytics, store.products, store.counterparties, orderUC, formatter)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	httpLog := log.Component("http")
	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		SwaggerFile: cfg.HTTP.SwaggerFile,
		Log:         httpLog,
		Metrics:     httpRouter.NewHTTPMetrics(reg),
		Gatherer:    reg,
	})
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(store.users),
		ProductUC:   usecase.NewProductUseCase(store.products),
		ClientUC:    usecase.NewCounterpartyUseCase(entity.KindClient, store.counterparties, verifier),
		SupplierUC:  usecase.NewCounterpartyUseCase(entity.KindSupplier, store.counterparties, verifier),
		OrderUC:     orderUC,
		PrintUC:     printUC,
		TransferUC:  transferUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         httpLog,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (aplicando migraciones si DB_AUTO_MIGRATE) o, con
// DATABASE_URL=memory, un store en memoria que se pierde al reiniciar.
func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.InMemory() {
		log.Warn().Msg("usando base de datos en memoria: los datos no persisten")
		s := memory.NewStore()
		return &storage{
			tx:             s,
			users:          s.Users(),
			products:       s.Products(),
			counterparties: s.Counterparties(),
			orders:         s.Orders(),
			analytics:      s.Analytics(),
			close:          func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.ConnectionString(), postgres.PoolOptions{})
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		tx:             postgres.NewTxRunner(pool),
		users:          postgres.NewUserRepository(pool),
		products:       postgres.NewProductRepository(pool),
		counterparties: postgres.NewCounterpartyRepository(pool),
		orders:         postgres.NewOrderRepository(pool),
		analytics:      postgres.NewAnalyticsRepository(pool),
		close:          pool.Close,
	}, nil
}
