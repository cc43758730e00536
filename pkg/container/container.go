package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"supplychain-backend/internal/config"
	"supplychain-backend/internal/infrastructure/cache"
	"supplychain-backend/internal/infrastructure/database"
	"supplychain-backend/pkg/keylock"

	alertHandler "supplychain-backend/internal/domains/alert/handler"
	alertJob "supplychain-backend/internal/domains/alert/job"
	alertRepo "supplychain-backend/internal/domains/alert/repository"
	alertService "supplychain-backend/internal/domains/alert/service"
	catalogService "supplychain-backend/internal/domains/catalog/service"
	forecastHandler "supplychain-backend/internal/domains/forecast/handler"
	forecastService "supplychain-backend/internal/domains/forecast/service"
	inventoryHandler "supplychain-backend/internal/domains/inventory/handler"
	inventoryRepo "supplychain-backend/internal/domains/inventory/repository"
	inventoryService "supplychain-backend/internal/domains/inventory/service"
	locationHandler "supplychain-backend/internal/domains/location/handler"
	locationRepo "supplychain-backend/internal/domains/location/repository"
	locationService "supplychain-backend/internal/domains/location/service"
	orderHandler "supplychain-backend/internal/domains/order/handler"
	orderRepo "supplychain-backend/internal/domains/order/repository"
	orderService "supplychain-backend/internal/domains/order/service"
	shipmentHandler "supplychain-backend/internal/domains/shipment/handler"
	shipmentRepo "supplychain-backend/internal/domains/shipment/repository"
	shipmentService "supplychain-backend/internal/domains/shipment/service"
)

// Container holds the full dependency graph. Everything is a singleton built
// once at startup, layer by layer: config, infrastructure, repositories,
// services, handlers.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *cache.RedisClient
	AsynqClient *asynq.Client
	Locks       *keylock.KeyLock

	InventoryRepo inventoryRepo.RepositoryInterface
	LocationRepo  locationRepo.RepositoryInterface
	AlertRepo     alertRepo.RepositoryInterface
	OrderRepo     orderRepo.RepositoryInterface
	ShipmentRepo  shipmentRepo.RepositoryInterface

	InventoryService inventoryService.ServiceInterface
	LocationService  locationService.ServiceInterface
	AlertService     alertService.ServiceInterface
	ForecastService  forecastService.ServiceInterface
	CatalogClient    catalogService.PriceClient
	OrderService     orderService.ServiceInterface
	ShipmentService  shipmentService.ServiceInterface

	InventoryHandler *inventoryHandler.Handler
	ForecastHandler  *forecastHandler.Handler
	LocationHandler  *locationHandler.Handler
	AlertHandler     *alertHandler.Handler
	OrderHandler     *orderHandler.Handler
	ShipmentHandler  *shipmentHandler.Handler
}

// NewContainer builds the dependency graph.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI container...")

	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (environment: %s)", cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	redisClient := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis serves the forecast cache and the task queue; the API can
		// limp along without it.
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Redis = redisClient

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.Locks = keylock.New(cfg.Ledger.LockWait)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI container initialized")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.InventoryRepo = inventoryRepo.NewRepository(pool)
	c.LocationRepo = locationRepo.NewRepository(pool)
	c.AlertRepo = alertRepo.NewRepository(pool)
	c.OrderRepo = orderRepo.NewRepository(pool)
	c.ShipmentRepo = shipmentRepo.NewRepository(pool)
}

func (c *Container) initServices() {
	c.ForecastService = forecastService.NewService(c.Config.Forecast, c.Redis.Client)
	c.CatalogClient = catalogService.NewPriceClient(c.Config.Catalog)

	// Ledger mutations enqueue alert re-evaluation through asynq.
	notifier := alertJob.NewEnqueuer(c.AsynqClient)
	c.InventoryService = inventoryService.NewLedgerService(c.InventoryRepo, c.Locks, notifier)

	c.LocationService = locationService.NewService(c.LocationRepo)

	c.AlertService = alertService.NewService(
		c.Config.Alert,
		c.AlertRepo,
		c.InventoryRepo,
		c.LocationRepo,
		c.ForecastService,
	)

	c.OrderService = orderService.NewService(
		c.OrderRepo,
		c.InventoryService,
		c.CatalogClient,
		c.LocationRepo,
	)

	c.ShipmentService = shipmentService.NewService(c.ShipmentRepo, c.OrderService)
}

func (c *Container) initHandlers() {
	c.InventoryHandler = inventoryHandler.NewHandler(c.InventoryService)
	c.ForecastHandler = forecastHandler.NewHandler(c.ForecastService)
	c.LocationHandler = locationHandler.NewHandler(c.LocationService)
	c.AlertHandler = alertHandler.NewHandler(c.AlertService)
	c.OrderHandler = orderHandler.NewHandler(c.OrderService)
	c.ShipmentHandler = shipmentHandler.NewHandler(c.ShipmentService)
}

// Close releases all infrastructure connections.
func (c *Container) Close() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("failed to close asynq client: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("failed to close redis: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
