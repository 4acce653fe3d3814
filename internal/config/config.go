package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	AdminAddr  string `yaml:"admin_addr" json:"admin_addr"`

	PageSize int64  `yaml:"page_size" json:"page_size"`
	PageDir  string `yaml:"page_dir" json:"page_dir"`
	UfsRoot  string `yaml:"ufs_root" json:"ufs_root"`

	LoadWorkers int `yaml:"load_workers" json:"load_workers"`
	JobTTLMin   int `yaml:"job_ttl_min" json:"job_ttl_min"`
}

// Значения по умолчанию для незаполненных полей конфигурации.
const (
	DefaultListenAddr  = ":28080"
	DefaultAdminAddr   = ":28081"
	DefaultPageSize    = 1 << 20
	DefaultLoadWorkers = 4
	DefaultJobTTLMin   = 30
)

// Load читает YAML-конфигурацию, применяет ENV-переопределения и дефолты.
func Load() (*Config, error) {
	var c Config

	path := getenv("CONFIG_PATH", "./config.yaml")
	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ADMIN_ADDR"); v != "" {
		c.AdminAddr = v
	}
	if v := os.Getenv("PAGE_DIR"); v != "" {
		c.PageDir = v
	}
	if v := os.Getenv("UFS_ROOT"); v != "" {
		c.UfsRoot = v
	}
	if v := envInt64("PAGE_SIZE", 0); v > 0 {
		c.PageSize = v
	}

	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.AdminAddr == "" {
		c.AdminAddr = DefaultAdminAddr
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.LoadWorkers <= 0 {
		c.LoadWorkers = DefaultLoadWorkers
	}
	if c.JobTTLMin <= 0 {
		c.JobTTLMin = DefaultJobTTLMin
	}
}

// envInt64 возвращает целочисленное значение из переменной окружения либо дефолт.
func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
