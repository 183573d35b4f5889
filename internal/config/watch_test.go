package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func waitConfig(t *testing.T, updates <-chan Config) Config {
	t.Helper()
	select {
	case cfg, ok := <-updates:
		if !ok {
			t.Fatal("updates closed early")
		}
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config update")
	}
	return Config{}
}

func TestWatch_EmitsOnRewrite(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `theme = "vintage"`)
	log, _ := test.NewNullLogger()

	updates, err := Watch(ctx, path, log)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`theme = "dracula"`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if cfg := waitConfig(t, updates); cfg.Theme != "dracula" {
		t.Errorf("Theme = %q, want dracula", cfg.Theme)
	}
}

func TestWatch_CreatesMissingDirectory(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "later", "config.toml")
	log, _ := test.NewNullLogger()

	updates, err := Watch(ctx, path, log)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := SaveTheme(path, "nord"); err != nil {
		t.Fatalf("SaveTheme() error = %v", err)
	}
	if cfg := waitConfig(t, updates); cfg.Theme != "nord" {
		t.Errorf("Theme = %q, want nord", cfg.Theme)
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `theme = "vintage"`)
	log, _ := test.NewNullLogger()

	updates, err := Watch(ctx, path, log)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte(`theme = "x"`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case cfg := <-updates:
		t.Fatalf("unexpected update %+v", cfg)
	case <-time.After(4 * watchDebounce):
	}
}

func TestWatch_BadReloadIsLoggedAndSkipped(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `theme = "vintage"`)
	log, hook := test.NewNullLogger()

	updates, err := Watch(ctx, path, log)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`lineup_url = "ftp://nope"`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case cfg := <-updates:
		t.Fatalf("invalid config was published: %+v", cfg)
	case <-time.After(4 * watchDebounce):
	}

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning for the failed reload")
	}

	if err := os.WriteFile(path, []byte(`theme = "nord"`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if cfg := waitConfig(t, updates); cfg.Theme != "nord" {
		t.Errorf("Theme = %q, want nord", cfg.Theme)
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	path := writeConfig(t, t.TempDir(), `theme = "vintage"`)
	log, _ := test.NewNullLogger()

	updates, err := Watch(ctx, path, log)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	cancel()

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("updates not closed after cancel")
	}
}

func TestPublish_KeepsLatest(t *testing.T) {
	out := make(chan Config, 1)
	publish(out, Config{Theme: "a"})
	publish(out, Config{Theme: "b"})

	if got := (<-out).Theme; got != "b" {
		t.Errorf("published %q, want latest b", got)
	}
	select {
	case cfg := <-out:
		t.Errorf("unexpected extra value %+v", cfg)
	default:
	}
}
