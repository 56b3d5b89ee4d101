package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr            string
	OrdersFile          string
	AdminToken          string
	RequireAuth         bool
	RabbitURL           string
	OrdersExchange      string
	StaticDir           string
	ShutdownGracePeriod time.Duration
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func Load() (Config, error) {
	httpAddr := getEnv("ORDERS_HTTP_ADDR", ":8080")
	ordersFile := getEnv("ORDERS_FILE", "data/orders.json")
	adminToken := getEnv("ORDERS_ADMIN_TOKEN", "")
	rabbitURL := getEnv("ORDERS_RABBIT_URL", "")
	ordersExchange := getEnv("ORDERS_EXCHANGE", "orders.events")
	staticDir := getEnv("ORDERS_STATIC_DIR", "")

	// Admin auth is explicit: it defaults to "token configured" and may
	// be forced on, but forcing it on without a token would lock every
	// admin out, so that is a startup error.
	requireAuth := parseBool("ORDERS_REQUIRE_AUTH", adminToken != "")
	if requireAuth && adminToken == "" {
		return Config{}, errors.New("ORDERS_REQUIRE_AUTH is enabled but ORDERS_ADMIN_TOKEN is empty")
	}

	grace := parseDuration("ORDERS_SHUTDOWN_TIMEOUT", 10*time.Second)

	return Config{
		HTTPAddr:            httpAddr,
		OrdersFile:          ordersFile,
		AdminToken:          adminToken,
		RequireAuth:         requireAuth,
		RabbitURL:           rabbitURL,
		OrdersExchange:      ordersExchange,
		StaticDir:           staticDir,
		ShutdownGracePeriod: grace,
	}, nil
}

func parseDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return def
}

func parseBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return def
}
