package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load without DB_USER and DB_NAME: want error")
	}
}

func TestLoadRejectsBlankDatabase(t *testing.T) {
	t.Setenv("DB_USER", "doula")
	t.Setenv("DB_NAME", "   ")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DB_NAME") {
		t.Errorf("blank DB_NAME: got %v, want error naming DB_NAME", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_USER", "doula")
	t.Setenv("DB_NAME", "doulacare")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CORS_ORIGINS", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "8000" || c.DBHost != "127.0.0.1" || c.DBPort != "3306" {
		t.Errorf("defaults: got port=%s host=%s dbport=%s", c.Port, c.DBHost, c.DBPort)
	}
	if c.StripeCurrency != "eur" || c.ChatHistorySize != 100 || c.ChatWriteTimeoutSec != 10 {
		t.Errorf("defaults: got currency=%s history=%d timeout=%d", c.StripeCurrency, c.ChatHistorySize, c.ChatWriteTimeoutSec)
	}
	if c.AuthEnabled() {
		t.Error("AuthEnabled without JWT_SECRET: want false")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	t.Setenv("DB_USER", "doula")
	t.Setenv("DB_NAME", "doulacare")
	t.Setenv("CHAT_HISTORY_SIZE", "lots")
	if _, err := Load(); err == nil {
		t.Error("malformed CHAT_HISTORY_SIZE: want error")
	}
}

func TestOrigins(t *testing.T) {
	t.Parallel()
	c := Config{CORSOrigins: " http://a.test , ,http://b.test:8081,"}
	got := c.Origins()
	want := []string{"http://a.test", "http://b.test:8081"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("origin %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if n := len(Config{}.Origins()); n != 0 {
		t.Errorf("empty: got %d origins", n)
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	c := LoadRateLimitConfig()
	if c.Enabled {
		t.Error("Enabled: want false")
	}
	if c.Capacity != 1 {
		t.Errorf("Capacity: got %d, want 1", c.Capacity)
	}
	if c.TTL != 5*time.Second {
		t.Errorf("TTL: got %v, want 5s", c.TTL)
	}
}
