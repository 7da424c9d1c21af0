package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	v := New()
	if got := v.GetString("ADDR"); got != ":8080" {
		t.Errorf("ADDR: want :8080, got %q", got)
	}
	if got := v.GetDuration("ACCESS_TTL"); got != 24*time.Hour {
		t.Errorf("ACCESS_TTL: want 24h, got %v", got)
	}
}

func TestNew_EnvOverridesAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("REMIND_OFFSETS=12h\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("ENV_FILE", envPath)
	t.Setenv("ADDR", ":9999")
	t.Cleanup(func() { os.Unsetenv("REMIND_OFFSETS") })

	v := New()
	if got := v.GetString("ADDR"); got != ":9999" {
		t.Errorf("ADDR: want :9999, got %q", got)
	}
	if got := v.GetString("REMIND_OFFSETS"); got != "12h" {
		t.Errorf("REMIND_OFFSETS from .env: want 12h, got %q", got)
	}
}

func TestLocation_Fallback(t *testing.T) {
	old := Conf
	t.Cleanup(func() { Conf = old })
	Conf = New()
	Conf.Set("TIMEZONE", "Not/AZone")
	loc := Location()
	_, off := time.Now().In(loc).Zone()
	if off != 5*3600 {
		t.Errorf("fallback offset: want 18000, got %d", off)
	}
}

func TestInsecureDefaults(t *testing.T) {
	old := Conf
	t.Cleanup(func() { Conf = old })
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("ADMIN_PASSWORD")

	Conf = New()
	if got := InsecureDefaults(); len(got) != 2 {
		t.Fatalf("fresh config: want both keys flagged, got %v", got)
	}
	Conf.Set("JWT_SECRET", "a-real-secret")
	got := InsecureDefaults()
	if len(got) != 1 || got[0] != "ADMIN_PASSWORD" {
		t.Fatalf("after setting JWT_SECRET: got %v", got)
	}
	Conf.Set("ADMIN_PASSWORD", "s3cure-pass")
	if got := InsecureDefaults(); len(got) != 0 {
		t.Fatalf("all set: got %v", got)
	}
}
