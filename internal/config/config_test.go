package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.OrdersFile != "data/orders.json" {
		t.Errorf("OrdersFile = %q", cfg.OrdersFile)
	}
	if cfg.RequireAuth {
		t.Error("RequireAuth should default to false with no token")
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Errorf("ShutdownGracePeriod = %v", cfg.ShutdownGracePeriod)
	}
}

func TestLoadTokenEnablesAuth(t *testing.T) {
	t.Setenv("ORDERS_ADMIN_TOKEN", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.RequireAuth {
		t.Error("RequireAuth should default to true when a token is set")
	}
}

func TestLoadExplicitAuthOverrides(t *testing.T) {
	t.Setenv("ORDERS_ADMIN_TOKEN", "s3cret")
	t.Setenv("ORDERS_REQUIRE_AUTH", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RequireAuth {
		t.Error("explicit ORDERS_REQUIRE_AUTH=false should win")
	}
}

func TestLoadRequireAuthWithoutTokenFails(t *testing.T) {
	t.Setenv("ORDERS_REQUIRE_AUTH", "true")

	if _, err := Load(); err == nil {
		t.Fatal("requiring auth without a token must be a startup error")
	}
}
