package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	appanalytics "github.com/jhoicas/pedidos-api/internal/application/analytics"
	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/transfer"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// bodyLimit cubre el CSV máximo de importación más el overhead multipart.
const bodyLimit = transfer.MaxImportSize + 1<<20

// AppConfig opciones de la aplicación Fiber.
type AppConfig struct {
	Name        string
	SwaggerFile string // se omite la UI si el archivo no existe
	Log         zerolog.Logger
	Metrics     *HTTPMetrics        // nil: sin métricas HTTP
	Gatherer    prometheus.Gatherer // nil: sin endpoint /metrics
}

// NewApp crea la aplicación Fiber con middlewares globales, /health, /metrics y Swagger.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(cfg.Log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Middleware())
	}
	app.Use(RequestLogger(cfg.Log))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    cfg.Name + " API",
			}))
		} else {
			cfg.Log.Warn().Str("file", cfg.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	ClientUC    *usecase.CounterpartyUseCase
	SupplierUC  *usecase.CounterpartyUseCase
	OrderUC     *orders.UseCase
	PrintUC     *orders.PrintUseCase
	TransferUC  *transfer.UseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC, deps.Log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token); el usuario del token es el owner de los datos.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/me", authHandler.Me)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Get("/search", productHandler.Search)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	counterparties(protected.Group("/clients"), NewCounterpartyHandler(deps.ClientUC, deps.Log))
	counterparties(protected.Group("/suppliers"), NewCounterpartyHandler(deps.SupplierUC, deps.Log))

	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.PrintUC, deps.Log)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Get("/:id/print", orderHandler.Print)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Delete("/:id", orderHandler.Delete)

	transferGroup := protected.Group("/transfer")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.Log)
	transferGroup.Post("/import/:resource", transferHandler.Import)
	transferGroup.Get("/export/:resource", transferHandler.Export)
	transferGroup.Get("/stats", transferHandler.Stats)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Log)
	protected.Get("/dashboard", dashboardHandler.GetSummary)
}

func counterparties(g fiber.Router, h *CounterpartyHandler) {
	g.Get("/search", h.Search)
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}
