package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

// Config is the root runtime configuration.
type Config struct {
	Log          logger.LogConfig   `json:"log" yaml:"log"`
	Dictionaries []DictionaryConfig `json:"dictionaries" yaml:"dictionaries"`
	Scan         ScanConfig         `json:"scan" yaml:"scan"`
	HTTP         HTTPConfig         `json:"http" yaml:"http"`
	DNS          DNSConfig          `json:"dns" yaml:"dns"`
	Pprof        PprofConfig        `json:"pprof" yaml:"pprof"`
}

type DictionaryConfig struct {
	Name        string         `json:"name" yaml:"name"`
	MaxDistance int            `json:"max_distance" yaml:"max_distance"`
	Watch       bool           `json:"watch" yaml:"watch"`
	Sources     []SourceConfig `json:"sources" yaml:"sources"`
}

// SourceConfig is decoded by the source factory registered for Type.
type SourceConfig struct {
	Type string      `json:"type" yaml:"type"`
	Data interface{} `json:"data" yaml:"data"`
}

type ScanConfig struct {
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

type HTTPConfig struct {
	Bind string `json:"bind" yaml:"bind"`
}

type DNSConfig struct {
	Bind       string `json:"bind" yaml:"bind"`
	Dictionary string `json:"dictionary" yaml:"dictionary"`
	Upstream   string `json:"upstream" yaml:"upstream"`
	Timeout    int64  `json:"timeout" yaml:"timeout"`
	Rcode      int    `json:"rcode" yaml:"rcode"`
	CacheSize  int    `json:"cache_size" yaml:"cache_size"`
}

type PprofConfig struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Bind   string `json:"bind" yaml:"bind"`
}

// Load reads the configuration file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	names := make(map[string]struct{}, len(c.Dictionaries))
	for idx, d := range c.Dictionaries {
		if d.Name == "" {
			return fmt.Errorf("dictionary:%d has no name", idx)
		}
		if _, ok := names[d.Name]; ok {
			return fmt.Errorf("duplicate dictionary name:%s", d.Name)
		}
		names[d.Name] = struct{}{}
		if d.MaxDistance < 0 {
			return fmt.Errorf("dictionary:%s has negative max_distance:%d", d.Name, d.MaxDistance)
		}
		if len(d.Sources) == 0 {
			return fmt.Errorf("dictionary:%s has no sources", d.Name)
		}
		for _, s := range d.Sources {
			if s.Type == "" {
				return fmt.Errorf("dictionary:%s has source without type", d.Name)
			}
		}
	}
	if c.Scan.Concurrency < 0 {
		return fmt.Errorf("negative scan concurrency:%d", c.Scan.Concurrency)
	}
	if c.DNS.Bind != "" {
		if _, ok := names[c.DNS.Dictionary]; !ok {
			return fmt.Errorf("dns dictionary:%s not found", c.DNS.Dictionary)
		}
		if c.DNS.Upstream == "" {
			return fmt.Errorf("dns upstream is required")
		}
	}
	return nil
}
