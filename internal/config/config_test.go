package config

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != DefaultListenAddr || cfg.AdminAddr != DefaultAdminAddr {
		t.Fatalf("addrs: %+v", cfg)
	}
	if cfg.PageSize != DefaultPageSize || cfg.LoadWorkers != DefaultLoadWorkers {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func Test_Load_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "listen_addr: \":1111\"\npage_size: 4096\nufs_root: /srv/ufs\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LISTEN_ADDR", ":2222")
	t.Setenv("PAGE_SIZE", "8192")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	// ENV сильнее YAML.
	if cfg.ListenAddr != ":2222" {
		t.Fatalf("listen addr: %q", cfg.ListenAddr)
	}
	if cfg.PageSize != 8192 {
		t.Fatalf("page size: %d", cfg.PageSize)
	}
	if cfg.UfsRoot != "/srv/ufs" {
		t.Fatalf("ufs root: %q", cfg.UfsRoot)
	}
}
