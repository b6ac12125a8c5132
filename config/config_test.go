package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/billing?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "billing-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "PAGSEGURO_HTTP_TIMEOUT_SECONDS", "12")
	setEnv(t, "BILLING_TRANSFER_PENDING_TTL_HOURS", "6")
	setEnv(t, "BILLING_VOUCHER_PENDING_TTL_HOURS", "48")
	setEnv(t, "BILLING_RECONCILE_STALE_AFTER_MINUTES", "13")
	setEnv(t, "BILLING_JOB_BATCH_SIZE", "99")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "billing-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.PagSeguro.HTTPTimeout != 12*time.Second {
		t.Fatalf("unexpected pagseguro timeout: %v", cfg.PagSeguro.HTTPTimeout)
	}
	if cfg.Billing.TransferPendingTTL != 6*time.Hour {
		t.Fatalf("unexpected transfer pending ttl: %v", cfg.Billing.TransferPendingTTL)
	}
	if cfg.Billing.VoucherPendingTTL != 48*time.Hour {
		t.Fatalf("unexpected voucher pending ttl: %v", cfg.Billing.VoucherPendingTTL)
	}
	if cfg.Billing.ReconcileStaleAfter != 13*time.Minute {
		t.Fatalf("unexpected reconcile stale after: %v", cfg.Billing.ReconcileStaleAfter)
	}
	if cfg.Billing.JobBatchSize != 99 {
		t.Fatalf("unexpected job batch size: %d", cfg.Billing.JobBatchSize)
	}
}
