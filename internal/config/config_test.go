package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
matching:
  max_trial: 5
  timezone: UTC
catalog:
  products:
    - id: 1
      name: single
      price: 7000
      ticket_count: 1
  coupon_types:
    - id: 9
      name: test
      discount_rate: 30
      product_ids: [1]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Matching.MaxTrial != 5 {
		t.Fatalf("unexpected max_trial: %d", cfg.Matching.MaxTrial)
	}
	if cfg.Matching.Timezone != "UTC" {
		t.Fatalf("unexpected timezone: %s", cfg.Matching.Timezone)
	}
	if len(cfg.Catalog.Products) != 1 || cfg.Catalog.Products[0].Price != 7000 {
		t.Fatalf("unexpected products: %+v", cfg.Catalog.Products)
	}
	if len(cfg.Catalog.CouponTypes) != 1 || cfg.Catalog.CouponTypes[0].DiscountRate != 30 {
		t.Fatalf("unexpected coupon types: %+v", cfg.Catalog.CouponTypes)
	}

	// Untouched sections keep their defaults.
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Matching.MinTeam != 2 {
		t.Fatalf("min_team default should stay 2, got %d", cfg.Matching.MinTeam)
	}
}

func TestLoadAppliesEnvOverridesOverYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("POSTGRES_DSN", "postgres://env-dsn")
	t.Setenv("MATCHING_MAX_TRIAL", "7")
	t.Setenv("TOSS_SECRET_KEY", "test_sk")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://env-dsn" {
		t.Fatalf("unexpected dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Matching.MaxTrial != 7 {
		t.Fatalf("unexpected max_trial: %d", cfg.Matching.MaxTrial)
	}
	if cfg.Toss.SecretKey != "test_sk" {
		t.Fatalf("unexpected toss secret: %s", cfg.Toss.SecretKey)
	}
}

func TestLoadRejectsInvalidEnvInt(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MATCHING_MAX_TRIAL", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid MATCHING_MAX_TRIAL")
	}
}

func TestCatalogAccessors(t *testing.T) {
	catalog := Default().Catalog

	product, ok := catalog.ProductByID(1)
	if !ok {
		t.Fatalf("product 1 must exist in default catalog")
	}
	if product.Price <= 0 || product.TicketCount <= 0 {
		t.Fatalf("product 1 has invalid price/ticket count: %+v", product)
	}

	if _, ok := catalog.ProductByID(999); ok {
		t.Fatalf("unknown product id must not resolve")
	}

	couponType, ok := catalog.CouponTypeByID(2)
	if !ok {
		t.Fatalf("coupon type 2 must exist in default catalog")
	}
	if couponType.DiscountRate != 100 {
		t.Fatalf("free coupon type must have 100%% discount, got %d", couponType.DiscountRate)
	}
	if !couponType.AppliesTo(1) {
		t.Fatalf("coupon type 2 must apply to product 1")
	}
	if couponType.AppliesTo(2) {
		t.Fatalf("coupon type 2 must not apply to product 2")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_ACCESS_TTL", "REFRESH_TTL",
		"TOSS_BASE_URL", "TOSS_SECRET_KEY", "TOSS_TIMEOUT",
		"SMS_BASE_URL", "SMS_SERVICE_ID", "SMS_ACCESS_KEY", "SMS_SECRET_KEY", "SMS_FROM_NUMBER",
		"MATCHING_MAX_TRIAL", "MATCHING_TIMEZONE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}
