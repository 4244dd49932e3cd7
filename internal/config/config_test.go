package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APICAP_PAGE_URL", "APICAP_API_FILTER", "APICAP_EXPECT", "APICAP_WAIT", "APICAP_OUTPUT_DIR", "APICAP_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PageURL != DefaultPageURL || cfg.APIFilter != DefaultAPIFilter || cfg.Expect != DefaultExpect {
		t.Fatalf("unexpected targets: %+v", cfg)
	}
	if cfg.Wait != 5*time.Second {
		t.Fatalf("expected 5s wait, got %s", cfg.Wait)
	}
	if !cfg.Headless {
		t.Fatalf("expected headless by default")
	}
	if cfg.NavTimeout != 0 {
		t.Fatalf("expected driver default nav timeout, got %s", cfg.NavTimeout)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `page_url = "https://example.test/"
api_filter = "/api/"
wait = "250ms"
headless = false
output_dir = "out"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("APICAP_API_FILTER", "/v2/")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PageURL != "https://example.test/" {
		t.Fatalf("page url: %s", cfg.PageURL)
	}
	if cfg.APIFilter != "/v2/" {
		t.Fatalf("expected env to win, got %s", cfg.APIFilter)
	}
	if cfg.Wait != 250*time.Millisecond {
		t.Fatalf("wait: %s", cfg.Wait)
	}
	if cfg.Headless {
		t.Fatalf("expected headless=false from file")
	}
	if cfg.Expect != DefaultExpect {
		t.Fatalf("expected default expect, got %s", cfg.Expect)
	}
	if cfg.Source != path {
		t.Fatalf("source: %s", cfg.Source)
	}
}

func TestLoadXDGConfig(t *testing.T) {
	isolate(t)
	xdg := os.Getenv("XDG_CONFIG_HOME")
	dir := filepath.Join(xdg, "apicap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`expect = "modelList"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range SystemPaths()[:2] {
		if _, err := os.Stat(p); err == nil {
			t.Skipf("system config %s shadows xdg config", p)
		}
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source != filepath.Join(dir, "config.toml") {
		t.Fatalf("expected xdg source, got %q", cfg.Source)
	}
	if cfg.Expect != "modelList" {
		t.Fatalf("expected xdg config applied, got %q", cfg.Expect)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	isolate(t)
	t.Setenv("APICAP_WAIT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid wait")
	}
}

func TestParseDurationNegative(t *testing.T) {
	if _, err := ParseDuration("wait", "-1s"); err == nil {
		t.Fatalf("expected error for negative duration")
	}
	d, err := ParseDuration("wait", " 2s ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 2*time.Second {
		t.Fatalf("expected 2s, got %s", d)
	}
}
