package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DOMAINADMIN_TEST_ENV", "value")
	if got := GetEnv("DOMAINADMIN_TEST_ENV", "fallback"); got != "value" {
		t.Fatalf("GetEnv returned %s, want value", got)
	}

	if got := GetEnv("DOMAINADMIN_TEST_ENV_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetEnv returned %s, want fallback", got)
	}
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DOMAINADMIN_TEST_INT", "eighty")
	if got := GetEnvInt("DOMAINADMIN_TEST_INT", 80); got != 80 {
		t.Fatalf("GetEnvInt returned %d, want 80", got)
	}

	t.Setenv("DOMAINADMIN_TEST_INT", "9090")
	if got := GetEnvInt("DOMAINADMIN_TEST_INT", 80); got != 9090 {
		t.Fatalf("GetEnvInt returned %d, want 9090", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1500ms": 1500 * time.Millisecond,
		"3":      3 * time.Second,
		"nope":   time.Minute,
		"":       time.Minute,
	}
	for value, want := range cases {
		t.Setenv("DOMAINADMIN_TEST_DURATION", value)
		if got := GetEnvDuration("DOMAINADMIN_TEST_DURATION", time.Minute); got != want {
			t.Fatalf("GetEnvDuration(%q) returned %s, want %s", value, got, want)
		}
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("DOMAINADMIN_TEST_BOOL", "true")
	if !GetEnvBool("DOMAINADMIN_TEST_BOOL", false) {
		t.Fatal("GetEnvBool returned false, want true")
	}
	t.Setenv("DOMAINADMIN_TEST_BOOL", "maybe")
	if GetEnvBool("DOMAINADMIN_TEST_BOOL", false) {
		t.Fatal("GetEnvBool accepted an invalid boolean")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("API_PORT", "8000")
	t.Setenv("DOMAIN_API_URL", defaultAPIBaseURL)
	t.Setenv("RENDER_WAIT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LOG_LEVEL", "info")

	cfg := FromEnv()
	if cfg.Port != 8080 || cfg.APIPort != 8000 {
		t.Fatalf("unexpected ports %d/%d", cfg.Port, cfg.APIPort)
	}
	if cfg.UI.RenderWait != 2*time.Second {
		t.Fatalf("RenderWait = %s, want 2s", cfg.UI.RenderWait)
	}
	if cfg.UI.SessionTTL != 12*time.Hour {
		t.Fatalf("SessionTTL = %s, want 12h", cfg.UI.SessionTTL)
	}
	if cfg.InstanceID == "" {
		t.Fatal("InstanceID should be generated")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Config{Port: 0, APIPort: 70000, LogLevel: "loud"}
	cfg.Database.Driver = "oracle"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted an invalid config")
	}
}

func TestSetAndGetConfig(t *testing.T) {
	original := GetConfig()
	t.Cleanup(func() { SetConfig(original) })

	cfg := Config{Port: 1234}
	SetConfig(cfg)
	if got := GetConfig().Port; got != 1234 {
		t.Fatalf("GetConfig().Port = %d, want 1234", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := db.PostgresDSN(); got != want {
		t.Fatalf("PostgresDSN = %q, want %q", got, want)
	}
}
