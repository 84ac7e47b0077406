// seed crea datos de demostración a través de los casos de uso: un usuario, clientes,
// proveedores, productos y algunos pedidos de compra y venta.
//
// Uso: go run ./cmd/seed [email] [password]
// Por defecto: demo@pedidos.local / demo12345. Usa la configuración de la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pedidos-api/pkg/config"
	"github.com/jhoicas/pedidos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name  string
	price string
	stock int64
}

var (
	seedClients   = []string{"Ana Morales", "Bruno Díaz", "Carla Gómez"}
	seedSuppliers = []string{"Distribuidora Central", "Importaciones del Norte"}
	seedProducts  = []seedProduct{
		{"Mesa de roble", "180.00", 4},
		{"Silla tapizada", "45.50", 12},
		{"Lámpara de pie", "32.90", 8},
		{"Estantería", "95.00", 3},
		{"Alfombra 2x3", "120.00", 5},
	}
)

func main() {
	email, password := "demo@pedidos.local", "demo12345"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	if cfg.DB.InMemory() {
		log.Fatal().Msg("seed requiere PostgreSQL: DATABASE_URL=memory no persiste los datos")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB.ConnectionString(), postgres.PoolOptions{MaxConns: 4})
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	counterpartyRepo := postgres.NewCounterpartyRepository(pool)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer})
	productUC := usecase.NewProductUseCase(productRepo)
	clientUC := usecase.NewCounterpartyUseCase(entity.KindClient, counterpartyRepo, nil)
	supplierUC := usecase.NewCounterpartyUseCase(entity.KindSupplier, counterpartyRepo, nil)
	orderUC := orders.NewUseCase(postgres.NewTxRunner(pool), postgres.NewOrderRepository(pool), productRepo, counterpartyRepo,
		nil, nil, log.Zerolog(), orders.Config{AllowNegativeStock: cfg.Stock.AllowNegative})

	user, err := authUC.RegisterUser(ctx, dto.RegisterRequest{Email: email, Password: password, Name: "Demo"})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		log.Fatal().Str("email", email).Msg("el usuario ya existe; use otro email para volver a sembrar")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("registrar usuario demo")
	}
	owner := user.ID

	clientIDs := make([]string, 0, len(seedClients))
	for _, name := range seedClients {
		cp, err := clientUC.Create(ctx, owner, dto.CreateCounterpartyRequest{Name: name})
		if err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("crear cliente")
		}
		clientIDs = append(clientIDs, cp.ID)
	}
	supplierIDs := make([]string, 0, len(seedSuppliers))
	for _, name := range seedSuppliers {
		cp, err := supplierUC.Create(ctx, owner, dto.CreateCounterpartyRequest{Name: name})
		if err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("crear proveedor")
		}
		supplierIDs = append(supplierIDs, cp.ID)
	}
	productIDs := make([]string, 0, len(seedProducts))
	for _, sp := range seedProducts {
		p, err := productUC.Create(ctx, owner, dto.CreateProductRequest{
			Name: sp.name, Price: decimal.RequireFromString(sp.price), Stock: sp.stock,
		})
		if err != nil {
			log.Fatal().Err(err).Str("name", sp.name).Msg("crear producto")
		}
		productIDs = append(productIDs, p.ID)
	}

	// Compras primero para que las ventas tengan stock.
	for i, supplierID := range supplierIDs {
		lines := []dto.OrderLineRequest{
			{ProductID: productIDs[i], Quantity: 10},
			{ProductID: productIDs[i+2], Quantity: 6},
		}
		if _, err := orderUC.Create(ctx, owner, dto.CreateOrderRequest{SupplierID: &supplierID, Lines: lines}); err != nil {
			log.Fatal().Err(err).Msg("crear pedido de proveedor")
		}
	}
	for i, clientID := range clientIDs {
		lines := []dto.OrderLineRequest{
			{ProductID: productIDs[i], Quantity: 2},
			{ProductID: productIDs[(i+1)%len(productIDs)], Quantity: 1},
		}
		if _, err := orderUC.Create(ctx, owner, dto.CreateOrderRequest{ClientID: &clientID, Lines: lines}); err != nil {
			log.Fatal().Err(err).Msg("crear pedido de cliente")
		}
	}

	log.Info().
		Str("email", email).
		Int("clients", len(clientIDs)).
		Int("suppliers", len(supplierIDs)).
		Int("products", len(productIDs)).
		Msg("datos de demostración creados")
}
