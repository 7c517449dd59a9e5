package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `environment: development
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Engine.MaxRounds != 64 {
		t.Errorf("expected default max rounds 64, got %d", cfg.Engine.MaxRounds)
	}
	if cfg.Engine.RefundWindowBlocks != 200 {
		t.Errorf("expected default refund window 200, got %d", cfg.Engine.RefundWindowBlocks)
	}
	if cfg.Engine.GraceBlocks != 10 {
		t.Errorf("expected default grace 10, got %d", cfg.Engine.GraceBlocks)
	}
	if cfg.Engine.NativeAsset != "NATIVE" {
		t.Errorf("expected default native asset NATIVE, got %q", cfg.Engine.NativeAsset)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("expected default logging info/json, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Oracle.Timeout != 10*time.Second {
		t.Errorf("expected default oracle timeout 10s, got %s", cfg.Oracle.Timeout)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `environment: production
server:
  port: 9090
  enable_cors: true
redis:
  addr: redis:6379
  db: 2
kafka:
  brokers:
    - kafka-1:9092
    - kafka-2:9092
  consumer_group: wager-engine
  topics:
    play_started: wager.play-started
    settled: wager.settled
jwt:
  secret: prod-secret
  expiration: 12h
engine:
  max_rounds: 32
  refund_window_blocks: 300
  grace_blocks: 20
  native_asset: WILD
  paytable_file: /etc/wagerengine/paytable.yaml
oracle:
  base_url: http://oracle:8000
  coordinator_id: coord-7
  callback_token: hush
external_services:
  wallet_service:
    base_url: http://wallet:8000
  bankroll_service:
    base_url: http://bankroll:8000
  price_feed_service:
    base_url: http://prices:8000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("environment must be production")
	}
	if cfg.Server.Port != 9090 || !cfg.Server.EnableCORS {
		t.Errorf("server config mismatch: %+v", cfg.Server)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topics["settled"] != "wager.settled" {
		t.Errorf("topic mapping lost: %v", cfg.Kafka.Topics)
	}
	if cfg.JWT.Expiration != 12*time.Hour {
		t.Errorf("expected 12h expiration, got %s", cfg.JWT.Expiration)
	}
	if cfg.Engine.MaxRounds != 32 || cfg.Engine.RefundWindowBlocks != 300 || cfg.Engine.GraceBlocks != 20 {
		t.Errorf("engine config mismatch: %+v", cfg.Engine)
	}
	if cfg.Engine.NativeAsset != "WILD" {
		t.Errorf("expected native asset WILD, got %q", cfg.Engine.NativeAsset)
	}
	if cfg.Oracle.CoordinatorID != "coord-7" || cfg.Oracle.CallbackToken != "hush" {
		t.Errorf("oracle config mismatch: %+v", cfg.Oracle)
	}
	if cfg.ExternalServices.BankrollService.BaseURL != "http://bankroll:8000" {
		t.Errorf("bankroll service URL mismatch: %+v", cfg.ExternalServices.BankrollService)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
