package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"CART_STORAGE", "CATALOG_API_URL", "CATALOG_TIMEOUT", "PRODUCT_CACHE_SIZE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Storage != StorageFile {
		t.Errorf("expected file storage, got %s", cfg.Storage)
	}
	if cfg.CatalogURL != "http://localhost:3333" {
		t.Errorf("unexpected catalog url %s", cfg.CatalogURL)
	}
	if cfg.CatalogTimeout != 5*time.Second {
		t.Errorf("unexpected timeout %v", cfg.CatalogTimeout)
	}
	if cfg.ProductCacheSize != 128 {
		t.Errorf("unexpected cache size %d", cfg.ProductCacheSize)
	}
	if diff := cmp.Diff([]string{"*"}, cfg.CORSOrigins); diff != "" {
		t.Errorf("cors origins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_STORAGE", "Redis")
	t.Setenv("CATALOG_TIMEOUT", "250ms")
	t.Setenv("PRODUCT_CACHE_SIZE", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://shop.example.com,")

	cfg := Load()

	if cfg.Storage != StorageRedis {
		t.Errorf("expected redis storage, got %s", cfg.Storage)
	}
	if cfg.CatalogTimeout != 250*time.Millisecond {
		t.Errorf("unexpected timeout %v", cfg.CatalogTimeout)
	}
	if cfg.ProductCacheSize != 128 {
		t.Errorf("expected default cache size for invalid value, got %d", cfg.ProductCacheSize)
	}
	want := []string{"http://localhost:3000", "https://shop.example.com"}
	if diff := cmp.Diff(want, cfg.CORSOrigins); diff != "" {
		t.Errorf("cors origins mismatch (-want +got):\n%s", diff)
	}
}
