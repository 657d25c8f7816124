package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output         string `yaml:"output"`
	Workers        int    `yaml:"workers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Author         string `yaml:"author"`
	Debug          bool   `yaml:"debug"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	BypassCloudflare bool   `yaml:"bypass_cloudflare"`
}

type Options struct {
	IgnoreConfig     bool
	Debug            bool
	Output           string
	Workers          int
	TimeoutSeconds   int
	Author           string
	Cookie           string
	CookieFile       string
	UserAgent        string
	BypassCloudflare bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:           ".",
		Workers:          runtime.NumCPU(),
		TimeoutSeconds:   30,
		Author:           "WuxiaWorld",
		Debug:            false,
		Cookie:           "",
		CookieFile:       "",
		UserAgent:        "",
		BypassCloudflare: false,
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadMerged loads the active profile (or the in-memory default) and
// applies CLI flag overrides on top.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `wuxia-dl config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.Author != "" {
		c.Author = o.Author
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.BypassCloudflare {
		c.BypassCloudflare = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.Author == "" {
		c.Author = "WuxiaWorld"
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -workers: %d\n", c.Workers)
	fmt.Printf(" -timeout_seconds: %d\n", c.TimeoutSeconds)
	fmt.Printf(" -author: %s\n", c.Author)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.Cookie != "" {
		fmt.Printf(" -cookie: (set)\n")
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.BypassCloudflare {
		fmt.Printf(" -bypass_cloudflare: %t\n", c.BypassCloudflare)
	}
}
