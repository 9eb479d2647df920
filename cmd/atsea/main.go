package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"atsea/internal/auth"
	"atsea/internal/cart"
	"atsea/internal/catalog"
	"atsea/internal/config"
	"atsea/internal/customer"
	"atsea/internal/order"
	"atsea/internal/server"
	"atsea/pkg/kit"
)

func main() {
	log := kit.NewLogger("atsea")
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
	}

	var (
		catalogStore  catalog.Store
		customerStore customer.Store
		orderStore    order.Store
		refreshStore  auth.RefreshStore
	)
	if db != nil {
		catalogStore = catalog.NewPostgresStore(db)
		customerStore = customer.NewPostgresStore(db)
		orderStore = order.NewPostgresStore(db)
		refreshStore = auth.NewPostgresRefreshStore(db)
		log.Info("storage: postgres")
	} else {
		mem := catalog.NewMemStore()
		mem.Seed(demoCatalog())
		catalogStore = mem
		customerStore = customer.NewMemStore()
		orderStore = order.NewMemStore()
		refreshStore = auth.NewMemRefreshStore()
		log.Info("storage: in-memory (no DATABASE_URL)")
	}

	var cartStore cart.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		cartStore = cart.NewRedisStore(rdb, log)
		log.Info("cart: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		cartStore = cart.NewMemStore()
		log.Info("cart: in-memory (no REDIS_ADDR)")
	}

	var events order.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := order.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		defer func() { _ = kp.Close() }()
		events = kp
		log.Info("order events: kafka",
			zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		events = order.NopPublisher{Log: log}
	}

	jwt := auth.NewTokenMaker(cfg.JWTSecret)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := server.NewHandler(server.Deps{
		Log: log,
		JWT: jwt,
		Auth: &auth.Server{
			Customers:  customerStore,
			Refresh:    refreshStore,
			JWT:        jwt,
			Log:        log,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		Catalog:        &catalog.Server{Store: catalogStore, Log: log},
		Customers:      &customer.Server{Store: customerStore, Log: log},
		Cart:           &cart.Server{Store: cartStore, Log: log},
		Orders:         &order.Server{Store: orderStore, Catalog: catalogStore, Events: events, Log: log},
		Registry:       registry,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(cfg.ListenAddr, handler, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// demoCatalog is the seed inventory for in-memory runs.
func demoCatalog() []catalog.Product {
	return []catalog.Product{
		{Name: "Fluke Anchor", Description: "8lb galvanized fluke anchor", Price: 49.99, Image: "/images/anchor.png"},
		{Name: "Anchor Chain", Description: "6ft galvanized chain lead", Price: 25.50, Image: "/images/chain.png"},
		{Name: "Dock Line", Description: "3/8in double-braid nylon, 15ft", Price: 12.75, Image: "/images/dockline.png"},
		{Name: "Boat Fender", Description: "ribbed vinyl fender, 6x22in", Price: 18.00, Image: "/images/fender.png"},
		{Name: "Hand Bilge Pump", Description: "manual pump, 24in stroke", Price: 34.25, Image: "/images/pump.png"},
	}
}
