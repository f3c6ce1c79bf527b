package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 3003 {
		t.Errorf("server port = %d, want 3003", cfg.Server.Port)
	}
	if cfg.Cache.Driver != CacheDriverMemory {
		t.Errorf("cache driver = %q, want %q", cfg.Cache.Driver, CacheDriverMemory)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache ttl = %v, want 10m", cfg.Cache.TTL)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("rate limit window = %v, want 1m", cfg.RateLimit.Window)
	}
	if cfg.DedupWindow != time.Second {
		t.Errorf("dedup window = %v, want 1s", cfg.DedupWindow)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/recipes")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("APP_APP_ENV", "production")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://app:secret@db:5432/recipes" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Cache.Driver != CacheDriverRedis || cfg.Redis.Addr != "cache:6379" {
		t.Errorf("cache = %+v, redis = %+v", cfg.Cache, cfg.Redis)
	}
	if cfg.App.Env != "production" {
		t.Errorf("app env = %q, want production", cfg.App.Env)
	}
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CACHE_DRIVER", "memcached")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"with password", "postgres://app:secret@db:5432/recipes", "postgres://app:****@db:5432/recipes"},
		{"without password", "postgres://app@db:5432/recipes", "postgres://app@db:5432/recipes"},
		{"key value form", "host=db user=app", "host=db user=app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskDSN(tt.dsn); got != tt.want {
				t.Errorf("MaskDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
